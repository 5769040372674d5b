package seen

import (
	"context"
	"log/slog"
	"time"

	"github.com/onnwee/seenbot/dispatch"
	"github.com/onnwee/seenbot/locale"
	"github.com/onnwee/seenbot/telemetry"
	"github.com/onnwee/seenbot/timeago"
)

// Reply keys.
const (
	KeyAskingSelf   = "Asking for yourself?"
	KeyRightHere    = "I'm right here."
	KeyUnknown      = "I don't know who {nick} is."
	KeyCouldntCheck = "I couldn't check on {nick} right now."
	KeySaw          = "I saw {nick} {timeago}, {action}"
)

// Command patterns answered by the querier.
const (
	PatternSeen        = `seen (\S+)$`
	PatternHaveYouSeen = `have you seen (\S+?)(?: lately)?\??$`
)

// Querier answers "seen <nick>" requests from the store.
type Querier struct {
	Store  Store
	Locale locale.Localizer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Register binds the seen command patterns.
func (q *Querier) Register(t *dispatch.Table) {
	handle := func(ctx context.Context, req dispatch.Request) string {
		return q.Seen(ctx, req.Network, req.Source, req.Match[1], req.Self)
	}
	t.Command(PatternSeen, handle)
	t.Command(PatternHaveYouSeen, handle)
}

// Answer is the outcome of a lookup. Event is set only when Found.
type Answer struct {
	Reply string
	Found bool
	Event Event
	Err   error
}

// Seen renders the reply to requester asking about target.
func (q *Querier) Seen(ctx context.Context, network, requester, target, self string) string {
	return q.Lookup(ctx, network, requester, target, self).Reply
}

// Lookup answers requester asking about target. Asking about oneself or the
// bot never reads the store; otherwise exactly one read is made.
func (q *Querier) Lookup(ctx context.Context, network, requester, target, self string) Answer {
	vars := locale.Vars{"nick": target}
	switch target {
	case requester:
		telemetry.CountQuery("self")
		return Answer{Reply: q.Locale.Localize(network, KeyAskingSelf, vars)}
	case self:
		telemetry.CountQuery("bot")
		return Answer{Reply: q.Locale.Localize(network, KeyRightHere, vars)}
	}

	ev, found, err := q.Store.GetLatest(ctx, network, target)
	if err != nil {
		telemetry.CountQuery("error")
		telemetry.LoggerWithCorr(ctx).Error("seen lookup failed",
			slog.String("network", network),
			slog.String("nick", target),
			slog.Any("err", err),
			slog.String("component", "seen"))
		return Answer{Reply: q.Locale.Localize(network, KeyCouldntCheck, vars), Err: err}
	}
	if !found {
		telemetry.CountQuery("unknown")
		return Answer{Reply: q.Locale.Localize(network, KeyUnknown, vars)}
	}
	telemetry.CountQuery("found")
	return Answer{Reply: q.Describe(network, ev, self), Found: true, Event: ev}
}

// Describe renders the "I saw ..." sentence for a stored event.
func (q *Querier) Describe(network string, ev Event, self string) string {
	now := time.Now
	if q.Now != nil {
		now = q.Now
	}
	var action Action = UnknownAction{}
	if ev.Action != nil {
		action = ev.Action
	}
	key, vars := action.Describe(ev.Nickname, self)
	vars["serv"] = network
	return q.Locale.Localize(network, KeySaw, locale.Vars{
		"nick":    ev.Nickname,
		"timeago": timeago.Since(ev.OccurredAt, now(), timeago.DefaultUnits),
		"action":  q.Locale.Localize(network, key, vars),
		"serv":    network,
	})
}
