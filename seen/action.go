package seen

import (
	"errors"
	"fmt"
	"sort"

	"github.com/onnwee/seenbot/locale"
)

// Kind tags the action stored with an event. The values are persisted and
// must not change.
type Kind int

const (
	KindJoin        Kind = 0x1
	KindPart        Kind = 0x2
	KindQuit        Kind = 0x3
	KindKick        Kind = 0x4
	KindKicked      Kind = 0x5
	KindNickChange  Kind = 0x6
	KindNickChanged Kind = 0x7
	KindMessage     Kind = 0x8
	KindNotice      Kind = 0x9
	KindTopicChange Kind = 0x10
	KindCtcp        Kind = 0x11
)

var (
	ErrUnknownKind     = errors.New("unknown action kind")
	ErrPayloadMismatch = errors.New("payload does not match action kind")
)

var kindNames = map[Kind]string{
	KindJoin:        "join",
	KindPart:        "part",
	KindQuit:        "quit",
	KindKick:        "kick",
	KindKicked:      "kicked",
	KindNickChange:  "nickchange",
	KindNickChanged: "nickchanged",
	KindMessage:     "message",
	KindNotice:      "notice",
	KindTopicChange: "topicchange",
	KindCtcp:        "ctcp",
}

// kindFields is the exact payload field set each kind requires.
var kindFields = map[Kind][]string{
	KindJoin:        {"channel"},
	KindPart:        {"channel", "reason"},
	KindQuit:        {"reason"},
	KindKick:        {"channel", "target", "reason"},
	KindKicked:      {"channel", "kicker", "reason"},
	KindNickChange:  {"newnick"},
	KindNickChanged: {"oldnick"},
	KindMessage:     {"channel", "text"},
	KindNotice:      {"channel", "text"},
	KindTopicChange: {"channel", "topic"},
	KindCtcp:        {"target", "text"},
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%#x)", int(k))
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Fields returns the payload fields k requires, or nil for unknown kinds.
func (k Kind) Fields() []string {
	return append([]string(nil), kindFields[k]...)
}

// Render keys. They double as the English text.
const (
	keyJoin        = `joining {channel}.`
	keyPart        = `leaving {channel}, with reason "{reason}".`
	keyQuit        = `disconnecting with reason "{reason}".`
	keyKick        = `kicking {target} from {channel} with reason "{reason}".`
	keyKicked      = `getting kicked from {channel} by {kicker} with reason "{reason}".`
	keyNickChange  = `changing nickname to {newnick}.`
	keyNickChanged = `changing nickname from {oldnick}.`
	keyMessage     = `telling {channel} "<{nick}> {text}".`
	keyNotice      = `noticing {channel} "*{nick}* {text}".`
	keyTopicChange = `changing topic for {channel} to "{topic}".`
	keyCtcp        = `CTCPing {target}.`
	keySomething   = `doing something.`
)

// Action is the kind-specific part of an event.
type Action interface {
	Kind() Kind
	// Payload returns the stored field values keyed by field name.
	Payload() map[string]string
	// Describe returns the localization key and values describing what actor
	// did. self is the bot's current nickname and is rendered as "me".
	Describe(actor, self string) (string, locale.Vars)
}

// Meify returns "me" when nick is the bot's own nickname.
func Meify(nick, self string) string {
	if self != "" && nick == self {
		return "me"
	}
	return nick
}

type JoinAction struct{ Channel string }

type PartAction struct{ Channel, Reason string }

type QuitAction struct{ Reason string }

type KickAction struct{ Channel, Target, Reason string }

type KickedAction struct{ Channel, Kicker, Reason string }

type NickChangeAction struct{ NewNick string }

type NickChangedAction struct{ OldNick string }

type MessageAction struct{ Channel, Text string }

type NoticeAction struct{ Channel, Text string }

type TopicChangeAction struct{ Channel, Topic string }

type CtcpAction struct{ Target, Text string }

// UnknownAction holds a stored row whose kind or payload could not be
// decoded. It renders as "doing something".
type UnknownAction struct {
	Tag    Kind
	Fields map[string]string
}

func (JoinAction) Kind() Kind        { return KindJoin }
func (PartAction) Kind() Kind        { return KindPart }
func (QuitAction) Kind() Kind        { return KindQuit }
func (KickAction) Kind() Kind        { return KindKick }
func (KickedAction) Kind() Kind      { return KindKicked }
func (NickChangeAction) Kind() Kind  { return KindNickChange }
func (NickChangedAction) Kind() Kind { return KindNickChanged }
func (MessageAction) Kind() Kind     { return KindMessage }
func (NoticeAction) Kind() Kind      { return KindNotice }
func (TopicChangeAction) Kind() Kind { return KindTopicChange }
func (CtcpAction) Kind() Kind        { return KindCtcp }
func (a UnknownAction) Kind() Kind   { return a.Tag }

func (a JoinAction) Payload() map[string]string { return map[string]string{"channel": a.Channel} }
func (a PartAction) Payload() map[string]string {
	return map[string]string{"channel": a.Channel, "reason": a.Reason}
}
func (a QuitAction) Payload() map[string]string { return map[string]string{"reason": a.Reason} }
func (a KickAction) Payload() map[string]string {
	return map[string]string{"channel": a.Channel, "target": a.Target, "reason": a.Reason}
}
func (a KickedAction) Payload() map[string]string {
	return map[string]string{"channel": a.Channel, "kicker": a.Kicker, "reason": a.Reason}
}
func (a NickChangeAction) Payload() map[string]string { return map[string]string{"newnick": a.NewNick} }
func (a NickChangedAction) Payload() map[string]string {
	return map[string]string{"oldnick": a.OldNick}
}
func (a MessageAction) Payload() map[string]string {
	return map[string]string{"channel": a.Channel, "text": a.Text}
}
func (a NoticeAction) Payload() map[string]string {
	return map[string]string{"channel": a.Channel, "text": a.Text}
}
func (a TopicChangeAction) Payload() map[string]string {
	return map[string]string{"channel": a.Channel, "topic": a.Topic}
}
func (a CtcpAction) Payload() map[string]string {
	return map[string]string{"target": a.Target, "text": a.Text}
}
func (a UnknownAction) Payload() map[string]string {
	out := make(map[string]string, len(a.Fields))
	for k, v := range a.Fields {
		out[k] = v
	}
	return out
}

func (a JoinAction) Describe(actor, self string) (string, locale.Vars) {
	return keyJoin, locale.Vars{"channel": a.Channel}
}

func (a PartAction) Describe(actor, self string) (string, locale.Vars) {
	return keyPart, locale.Vars{"channel": a.Channel, "reason": a.Reason}
}

func (a QuitAction) Describe(actor, self string) (string, locale.Vars) {
	return keyQuit, locale.Vars{"reason": a.Reason}
}

func (a KickAction) Describe(actor, self string) (string, locale.Vars) {
	return keyKick, locale.Vars{"channel": a.Channel, "target": Meify(a.Target, self), "reason": a.Reason}
}

func (a KickedAction) Describe(actor, self string) (string, locale.Vars) {
	return keyKicked, locale.Vars{"channel": a.Channel, "kicker": Meify(a.Kicker, self), "reason": a.Reason}
}

func (a NickChangeAction) Describe(actor, self string) (string, locale.Vars) {
	return keyNickChange, locale.Vars{"newnick": a.NewNick}
}

func (a NickChangedAction) Describe(actor, self string) (string, locale.Vars) {
	return keyNickChanged, locale.Vars{"oldnick": a.OldNick}
}

func (a MessageAction) Describe(actor, self string) (string, locale.Vars) {
	return keyMessage, locale.Vars{"channel": a.Channel, "nick": actor, "text": a.Text}
}

func (a NoticeAction) Describe(actor, self string) (string, locale.Vars) {
	return keyNotice, locale.Vars{"channel": a.Channel, "nick": actor, "text": a.Text}
}

func (a TopicChangeAction) Describe(actor, self string) (string, locale.Vars) {
	return keyTopicChange, locale.Vars{"channel": a.Channel, "topic": a.Topic}
}

func (a CtcpAction) Describe(actor, self string) (string, locale.Vars) {
	return keyCtcp, locale.Vars{"target": Meify(a.Target, self), "text": a.Text}
}

func (a UnknownAction) Describe(actor, self string) (string, locale.Vars) {
	return keySomething, locale.Vars{"nick": actor}
}

// NewAction builds the action for kind from a payload whose field set must
// match the kind's required fields exactly.
func NewAction(kind Kind, payload map[string]string) (Action, error) {
	fields, ok := kindFields[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err := checkFields(kind, fields, payload); err != nil {
		return nil, err
	}
	p := payload
	switch kind {
	case KindJoin:
		return JoinAction{Channel: p["channel"]}, nil
	case KindPart:
		return PartAction{Channel: p["channel"], Reason: p["reason"]}, nil
	case KindQuit:
		return QuitAction{Reason: p["reason"]}, nil
	case KindKick:
		return KickAction{Channel: p["channel"], Target: p["target"], Reason: p["reason"]}, nil
	case KindKicked:
		return KickedAction{Channel: p["channel"], Kicker: p["kicker"], Reason: p["reason"]}, nil
	case KindNickChange:
		return NickChangeAction{NewNick: p["newnick"]}, nil
	case KindNickChanged:
		return NickChangedAction{OldNick: p["oldnick"]}, nil
	case KindMessage:
		return MessageAction{Channel: p["channel"], Text: p["text"]}, nil
	case KindNotice:
		return NoticeAction{Channel: p["channel"], Text: p["text"]}, nil
	case KindTopicChange:
		return TopicChangeAction{Channel: p["channel"], Topic: p["topic"]}, nil
	case KindCtcp:
		return CtcpAction{Target: p["target"], Text: p["text"]}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func checkFields(kind Kind, fields []string, payload map[string]string) error {
	var missing, extra []string
	for _, f := range fields {
		if _, ok := payload[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(payload)+len(missing) != len(fields) {
		want := make(map[string]bool, len(fields))
		for _, f := range fields {
			want[f] = true
		}
		for k := range payload {
			if !want[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s missing %v, unexpected %v", ErrPayloadMismatch, kind, missing, extra)
}

// DecodeAction rebuilds a stored action. Rows that no longer decode become
// an UnknownAction instead of failing the read.
func DecodeAction(kind Kind, payload map[string]string) Action {
	a, err := NewAction(kind, payload)
	if err != nil {
		return UnknownAction{Tag: kind, Fields: payload}
	}
	return a
}
