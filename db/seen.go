package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onnwee/seenbot/seen"
	"github.com/onnwee/seenbot/telemetry"
)

const tracerName = "seen-store"

// DefaultStoreTimeout bounds each store call when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// SeenStore keeps one row per (network, nickname) in seen_events.
//
// Put serializes writers for a key with a transaction-scoped advisory lock
// and replaces the row with DELETE then INSERT in the same transaction, so
// readers observe either the old row or the new one.
type SeenStore struct {
	db      *sql.DB
	timeout time.Duration
}

var (
	_ seen.Store   = (*SeenStore)(nil)
	_ seen.Counter = (*SeenStore)(nil)
)

// NewSeenStore wraps db. A timeout of zero uses DefaultStoreTimeout; a
// negative timeout relies on the caller's context alone.
func NewSeenStore(db *sql.DB, timeout time.Duration) *SeenStore {
	if timeout == 0 {
		timeout = DefaultStoreTimeout
	}
	return &SeenStore{db: db, timeout: timeout}
}

func (s *SeenStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout < 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SeenStore) Put(ctx context.Context, ev seen.Event) (err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "seen.put", telemetry.IdentityAttrs(ev.Network, ev.Nickname)...)
	defer span.End()
	start := time.Now()
	defer func() {
		telemetry.ObserveStore("put", time.Since(start))
		telemetry.SetSpanResult(span, err)
	}()

	payload, err := json.Marshal(ev.Action.Payload())
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, ev.Network, ev.Nickname); err != nil {
		return fmt.Errorf("lock identity: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM seen_events WHERE network = $1 AND nickname = $2`, ev.Network, ev.Nickname); err != nil {
		return fmt.Errorf("delete previous event: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO seen_events (network, nickname, kind, payload, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		ev.Network, ev.Nickname, int64(ev.Kind()), string(payload), ev.OccurredAt.UTC()); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

func (s *SeenStore) GetLatest(ctx context.Context, network, nickname string) (ev seen.Event, found bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "seen.get_latest", telemetry.IdentityAttrs(network, nickname)...)
	defer span.End()
	start := time.Now()
	defer func() {
		telemetry.ObserveStore("get_latest", time.Since(start))
		telemetry.SetSpanResult(span, err)
	}()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	var (
		kind       int64
		rawPayload string
		occurredAt time.Time
	)
	// Rows left over from writers without the advisory lock may duplicate a
	// key; the newest one wins.
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, payload, occurred_at FROM seen_events
		 WHERE network = $1 AND nickname = $2
		 ORDER BY occurred_at DESC, id DESC LIMIT 1`, network, nickname)
	if err := row.Scan(&kind, &rawPayload, &occurredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seen.Event{}, false, nil
		}
		return seen.Event{}, false, fmt.Errorf("query latest event: %w", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		slog.Warn("corrupt seen payload",
			slog.String("network", network),
			slog.String("nick", nickname),
			slog.Any("err", err),
			slog.String("component", "db"))
		payload = nil
	}
	return seen.Event{
		Network:    network,
		Nickname:   nickname,
		Action:     seen.DecodeAction(seen.Kind(kind), payload),
		OccurredAt: occurredAt.UTC(),
	}, true, nil
}

// Count reports the number of distinct identities stored.
func (s *SeenStore) Count(ctx context.Context) (n int64, err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "seen.count")
	defer span.End()
	defer func() { telemetry.SetSpanResult(span, err) }()

	ctx, cancel := s.bound(ctx)
	defer cancel()
	telemetry.TimeFunc(telemetry.StoreObserver("count"), func() {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT (network, nickname)) FROM seen_events`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count seen identities: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *SeenStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
