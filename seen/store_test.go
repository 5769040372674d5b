package seen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// countingStore wraps MemoryStore and records every call.
type countingStore struct {
	mu     sync.Mutex
	mem    *MemoryStore
	puts   []Event
	gets   int
	putErr error
	getErr error
}

func newCountingStore() *countingStore { return &countingStore{mem: NewMemoryStore()} }

func (s *countingStore) Put(ctx context.Context, ev Event) error {
	s.mu.Lock()
	s.puts = append(s.puts, ev)
	err := s.putErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.mem.Put(ctx, ev)
}

func (s *countingStore) GetLatest(ctx context.Context, network, nickname string) (Event, bool, error) {
	s.mu.Lock()
	s.gets++
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return Event{}, false, err
	}
	return s.mem.GetLatest(ctx, network, nickname)
}

var t0 = time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)

func mustEvent(t *testing.T, network, nick string, a Action, at time.Time) Event {
	t.Helper()
	ev, err := NewEvent(network, nick, a, at)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestMemoryStoreReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, found, err := s.GetLatest(ctx, "libera", "alice"); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}
	first := mustEvent(t, "libera", "alice", JoinAction{Channel: "#go"}, t0)
	second := mustEvent(t, "libera", "alice", QuitAction{Reason: "bye"}, t0.Add(time.Minute))
	if err := s.Put(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.GetLatest(ctx, "libera", "alice")
	if err != nil || !found {
		t.Fatalf("GetLatest: found=%v err=%v", found, err)
	}
	if got.Kind() != KindQuit || got.Action != (QuitAction{Reason: "bye"}) {
		t.Errorf("got %+v, want the quit event", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestMemoryStoreKeysAreExact(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, mustEvent(t, "libera", "Alice", JoinAction{Channel: "#go"}, t0))

	for _, k := range [][2]string{{"libera", "alice"}, {"oftc", "Alice"}} {
		if _, found, _ := s.GetLatest(ctx, k[0], k[1]); found {
			t.Errorf("unexpected hit for %v", k)
		}
	}
}

func TestMemoryStoreHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	if err := s.Put(ctx, mustEvent(t, "n", "a", QuitAction{}, t0)); !errors.Is(err, context.Canceled) {
		t.Errorf("Put err = %v", err)
	}
	if _, _, err := s.GetLatest(ctx, "n", "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("GetLatest err = %v", err)
	}
}

func TestMemoryStoreConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Put(ctx, mustEvent(t, "libera", "alice", JoinAction{Channel: "#go"}, t0.Add(time.Duration(i)*time.Second)))
			_, _, _ = s.GetLatest(ctx, "libera", "alice")
		}(i)
	}
	wg.Wait()
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestMemoryStoreCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, mustEvent(t, "libera", "old", JoinAction{Channel: "#go"}, t0.Add(-48*time.Hour)))
	_ = s.Put(ctx, mustEvent(t, "libera", "new", JoinAction{Channel: "#go"}, t0))
	_ = s.Put(ctx, mustEvent(t, "libera", "new", QuitAction{Reason: "bye"}, t0.Add(time.Minute)))

	n, err := s.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	// Counting never forgets anyone, however old.
	if _, ok, _ := s.GetLatest(ctx, "libera", "old"); !ok {
		t.Error("old event missing after Count")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Count(cancelled); err == nil {
		t.Error("Count on cancelled context should fail")
	}
}
