package seen

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidEvent = errors.New("invalid event")

// Event is the latest observed action of one nickname on one network.
type Event struct {
	Network    string
	Nickname   string
	Action     Action
	OccurredAt time.Time
}

// NewEvent validates and builds an event. The timestamp is stored in UTC.
func NewEvent(network, nickname string, action Action, at time.Time) (Event, error) {
	switch {
	case network == "":
		return Event{}, fmt.Errorf("%w: empty network", ErrInvalidEvent)
	case nickname == "":
		return Event{}, fmt.Errorf("%w: empty nickname", ErrInvalidEvent)
	case action == nil:
		return Event{}, fmt.Errorf("%w: nil action", ErrInvalidEvent)
	}
	return Event{Network: network, Nickname: nickname, Action: action, OccurredAt: at.UTC()}, nil
}

// Kind is shorthand for e.Action.Kind().
func (e Event) Kind() Kind { return e.Action.Kind() }

// Store keeps at most one event per (network, nickname).
type Store interface {
	// Put replaces any stored event for the event's key with ev, atomically
	// with respect to other Put and GetLatest calls on that key.
	Put(ctx context.Context, ev Event) error
	// GetLatest returns the stored event for the key; found is false when
	// nothing has been recorded.
	GetLatest(ctx context.Context, network, nickname string) (ev Event, found bool, err error)
}

// Counter is implemented by stores that can report how many identities they
// hold. It never modifies the store.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}
