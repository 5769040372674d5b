package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/onnwee/seenbot/seen"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var (
	eventColumns = []string{"kind", "payload", "occurred_at"}
	at           = time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)
)

func kickEvent() seen.Event {
	return seen.Event{
		Network:    "libera",
		Nickname:   "alice",
		Action:     seen.KickAction{Channel: "#x", Target: "bob", Reason: "spam"},
		OccurredAt: at,
	}
}

func TestSeenStorePutReplacesInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\), hashtext\(\$2\)\)`).
		WithArgs("libera", "alice").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM seen_events WHERE network = \$1 AND nickname = \$2`).
		WithArgs("libera", "alice").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO seen_events \(network, nickname, kind, payload, occurred_at\)`).
		WithArgs("libera", "alice", int64(seen.KindKick), `{"channel":"#x","reason":"spam","target":"bob"}`, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := NewSeenStore(db, time.Second).Put(context.Background(), kickEvent()); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestSeenStorePutRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM seen_events`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO seen_events`).WillReturnError(boom)
	mock.ExpectRollback()

	err := NewSeenStore(db, time.Second).Put(context.Background(), kickEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestSeenStorePutBeginFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(context.DeadlineExceeded)

	err := NewSeenStore(db, time.Second).Put(context.Background(), kickEvent())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestSeenStoreGetLatest(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT kind, payload, occurred_at FROM seen_events`).
		WithArgs("libera", "alice").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(int64(seen.KindMessage), `{"channel":"#go","text":"hi"}`, at))

	ev, found, err := NewSeenStore(db, time.Second).GetLatest(context.Background(), "libera", "alice")
	if err != nil || !found {
		t.Fatalf("GetLatest: found=%v err=%v", found, err)
	}
	if ev.Action != (seen.MessageAction{Channel: "#go", Text: "hi"}) {
		t.Errorf("action = %#v", ev.Action)
	}
	if ev.Network != "libera" || ev.Nickname != "alice" || !ev.OccurredAt.Equal(at) {
		t.Errorf("event = %+v", ev)
	}
}

func TestSeenStoreGetLatestNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT kind, payload, occurred_at FROM seen_events`).
		WithArgs("libera", "ghost").
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, found, err := NewSeenStore(db, time.Second).GetLatest(context.Background(), "libera", "ghost")
	if err != nil || found {
		t.Fatalf("found=%v err=%v, want not found", found, err)
	}
}

func TestSeenStoreGetLatestCorruptRows(t *testing.T) {
	tests := []struct {
		name    string
		kind    int64
		payload string
	}{
		{"unknown kind", 0x42, `{}`},
		{"bad json", int64(seen.KindJoin), `{not json`},
		{"wrong fields", int64(seen.KindJoin), `{"reason":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery(`SELECT kind, payload, occurred_at FROM seen_events`).
				WillReturnRows(sqlmock.NewRows(eventColumns).AddRow(tt.kind, tt.payload, at))

			ev, found, err := NewSeenStore(db, time.Second).GetLatest(context.Background(), "libera", "alice")
			if err != nil || !found {
				t.Fatalf("found=%v err=%v", found, err)
			}
			if _, ok := ev.Action.(seen.UnknownAction); !ok {
				t.Errorf("action = %#v, want UnknownAction", ev.Action)
			}
		})
	}
}

func TestSeenStoreGetLatestQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT kind, payload, occurred_at FROM seen_events`).
		WillReturnError(sql.ErrConnDone)

	_, _, err := NewSeenStore(db, time.Second).GetLatest(context.Background(), "libera", "alice")
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewSeenStoreDefaultTimeout(t *testing.T) {
	if s := NewSeenStore(nil, 0); s.timeout != DefaultStoreTimeout {
		t.Errorf("timeout = %v", s.timeout)
	}
	s := NewSeenStore(nil, -1)
	ctx, cancel := s.bound(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Error("negative timeout should not set a deadline")
	}
}

func TestSeenStoreCount(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT \(network, nickname\)\) FROM seen_events`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := NewSeenStore(db, time.Second).Count(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestSeenStoreCountError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(sql.ErrConnDone)

	if _, err := NewSeenStore(db, time.Second).Count(context.Background()); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("err = %v", err)
	}
}
