package seen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onnwee/seenbot/dispatch"
	"github.com/onnwee/seenbot/telemetry"
)

// Recorder stores the latest event for every nickname involved in a
// lifecycle notification. Private messages and notices are never stored.
type Recorder struct {
	Store Store
	// Now defaults to time.Now.
	Now func() time.Time
}

// Register installs the recorder as a hook for every lifecycle event.
func (r *Recorder) Register(t *dispatch.Table) {
	for _, name := range dispatch.EventNames {
		t.Hook(name, r.Handle)
	}
}

// Handle records ev. Validation and store failures are returned; nothing is
// retried. Notifications that touch two nicknames attempt both writes.
func (r *Recorder) Handle(ctx context.Context, ev dispatch.Event) error {
	o := ev.Source()
	switch e := ev.(type) {
	case dispatch.Join:
		return r.log(ctx, o.Network, e.Actor, KindJoin, map[string]string{"channel": e.Channel})
	case dispatch.Part:
		return r.log(ctx, o.Network, e.Actor, KindPart, map[string]string{"channel": e.Channel, "reason": e.Reason})
	case dispatch.Quit:
		return r.log(ctx, o.Network, e.Actor, KindQuit, map[string]string{"reason": e.Reason})
	case dispatch.Kick:
		return errors.Join(
			r.log(ctx, o.Network, e.By, KindKick, map[string]string{"channel": e.Channel, "target": Meify(e.Target, o.Self), "reason": e.Reason}),
			r.log(ctx, o.Network, e.Target, KindKicked, map[string]string{"channel": e.Channel, "kicker": Meify(e.By, o.Self), "reason": e.Reason}),
		)
	case dispatch.NickChange:
		return errors.Join(
			r.log(ctx, o.Network, e.OldNick, KindNickChange, map[string]string{"newnick": e.NewNick}),
			r.log(ctx, o.Network, e.NewNick, KindNickChanged, map[string]string{"oldnick": e.OldNick}),
		)
	case dispatch.Message:
		if e.Private {
			return nil
		}
		return r.log(ctx, o.Network, e.Actor, KindMessage, map[string]string{"channel": e.Channel, "text": e.Text})
	case dispatch.Notice:
		if e.Private {
			return nil
		}
		return r.log(ctx, o.Network, e.Actor, KindNotice, map[string]string{"channel": e.Channel, "text": e.Text})
	case dispatch.TopicChange:
		return r.log(ctx, o.Network, e.Actor, KindTopicChange, map[string]string{"channel": e.Channel, "topic": e.Topic})
	case dispatch.Ctcp:
		return r.log(ctx, o.Network, e.Actor, KindCtcp, map[string]string{"target": Meify(e.Target, o.Self), "text": e.Text})
	}
	return fmt.Errorf("seen: unsupported event %T", ev)
}

func (r *Recorder) log(ctx context.Context, network, nick string, kind Kind, payload map[string]string) error {
	ev, err := r.build(network, nick, kind, payload)
	if err != nil {
		telemetry.DropEvent("invalid")
		slog.Warn("dropping invalid presence event",
			slog.String("network", network),
			slog.String("nick", nick),
			slog.String("kind", kind.String()),
			slog.Any("err", err),
			slog.String("component", "seen"))
		return err
	}
	if err := r.Store.Put(ctx, ev); err != nil {
		telemetry.DropEvent("store")
		return fmt.Errorf("store %s for %s/%s: %w", kind, network, nick, err)
	}
	telemetry.RecordEvent(kind.String())
	return nil
}

func (r *Recorder) build(network, nick string, kind Kind, payload map[string]string) (Event, error) {
	action, err := NewAction(kind, payload)
	if err != nil {
		return Event{}, err
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return NewEvent(network, nick, action, now())
}
