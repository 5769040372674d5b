package seen

import (
	"context"
	"sync"
)

type memKey struct{ network, nickname string }

// MemoryStore is an in-process Store. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[memKey]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[memKey]Event)}
}

func (s *MemoryStore) Put(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.events[memKey{ev.Network, ev.Nickname}] = ev
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, network, nickname string) (Event, bool, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, false, err
	}
	s.mu.RLock()
	ev, ok := s.events[memKey{network, nickname}]
	s.mu.RUnlock()
	return ev, ok, nil
}

// Count reports how many keys are stored.
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(s.Len()), nil
}

// Len reports how many keys are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
