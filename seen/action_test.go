package seen

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/onnwee/seenbot/locale"
)

func TestNewActionRoundTripsPayload(t *testing.T) {
	for kind := range kindFields {
		payload := make(map[string]string)
		for _, f := range kind.Fields() {
			payload[f] = f + "-value"
		}
		a, err := NewAction(kind, payload)
		if err != nil {
			t.Fatalf("NewAction(%s): %v", kind, err)
		}
		if a.Kind() != kind {
			t.Errorf("%s: Kind() = %s", kind, a.Kind())
		}
		if got := a.Payload(); !reflect.DeepEqual(got, payload) {
			t.Errorf("%s: Payload() = %v, want %v", kind, got, payload)
		}
	}
}

func TestNewActionRejectsMismatchedPayload(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		payload map[string]string
	}{
		{"missing field", KindKick, map[string]string{"channel": "#x", "target": "bob"}},
		{"extra field", KindJoin, map[string]string{"channel": "#x", "reason": "hi"}},
		{"wrong field", KindMessage, map[string]string{"channel": "#x", "message": "hi"}},
		{"nil payload", KindQuit, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAction(tt.kind, tt.payload); !errors.Is(err, ErrPayloadMismatch) {
				t.Errorf("err = %v, want ErrPayloadMismatch", err)
			}
		})
	}
}

func TestNewActionUnknownKind(t *testing.T) {
	if _, err := NewAction(Kind(0x42), map[string]string{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
	if Kind(0x42).Valid() || !KindCtcp.Valid() {
		t.Error("Valid() mismatch")
	}
	if got := Kind(0x42).String(); got != "kind(0x42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestDecodeActionFallsBack(t *testing.T) {
	a := DecodeAction(Kind(0x99), map[string]string{"x": "y"})
	u, ok := a.(UnknownAction)
	if !ok || u.Kind() != Kind(0x99) {
		t.Fatalf("DecodeAction = %#v", a)
	}
	if a := DecodeAction(KindJoin, map[string]string{}); reflect.TypeOf(a) != reflect.TypeOf(UnknownAction{}) {
		t.Errorf("corrupt join decoded to %T", a)
	}
	if a := DecodeAction(KindJoin, map[string]string{"channel": "#go"}); a != (JoinAction{Channel: "#go"}) {
		t.Errorf("join decoded to %#v", a)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{JoinAction{Channel: "#go"}, `joining #go.`},
		{PartAction{Channel: "#go", Reason: "later"}, `leaving #go, with reason "later".`},
		{QuitAction{Reason: "ping timeout"}, `disconnecting with reason "ping timeout".`},
		{KickAction{Channel: "#x", Target: "bob", Reason: "spam"}, `kicking bob from #x with reason "spam".`},
		{KickAction{Channel: "#x", Target: "michiru", Reason: "spam"}, `kicking me from #x with reason "spam".`},
		{KickedAction{Channel: "#x", Kicker: "alice", Reason: "spam"}, `getting kicked from #x by alice with reason "spam".`},
		{KickedAction{Channel: "#x", Kicker: "michiru", Reason: "spam"}, `getting kicked from #x by me with reason "spam".`},
		{NickChangeAction{NewNick: "carol_"}, `changing nickname to carol_.`},
		{NickChangedAction{OldNick: "carol"}, `changing nickname from carol.`},
		{MessageAction{Channel: "#go", Text: "hi all"}, `telling #go "<carol> hi all".`},
		{NoticeAction{Channel: "#go", Text: "maintenance"}, `noticing #go "*carol* maintenance".`},
		{TopicChangeAction{Channel: "#go", Topic: "Go 1.24"}, `changing topic for #go to "Go 1.24".`},
		{CtcpAction{Target: "michiru", Text: "VERSION"}, `CTCPing me.`},
		{CtcpAction{Target: "#go", Text: "ACTION waves"}, `CTCPing #go.`},
		{UnknownAction{Tag: 0x42}, `doing something.`},
	}
	for _, tt := range tests {
		key, vars := tt.action.Describe("carol", "michiru")
		if got := locale.Format(key, vars); got != tt.want {
			t.Errorf("%T: got %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestMeify(t *testing.T) {
	if Meify("michiru", "michiru") != "me" || Meify("bob", "michiru") != "bob" || Meify("", "") != "" {
		t.Error("Meify mismatch")
	}
}

func TestNewEventValidation(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	ev, err := NewEvent("libera", "alice", JoinAction{Channel: "#go"}, at)
	if err != nil {
		t.Fatal(err)
	}
	if ev.OccurredAt.Location() != time.UTC || !ev.OccurredAt.Equal(at) {
		t.Errorf("OccurredAt = %v", ev.OccurredAt)
	}
	for _, bad := range []struct {
		network, nick string
		action        Action
	}{
		{"", "alice", JoinAction{}},
		{"libera", "", JoinAction{}},
		{"libera", "alice", nil},
	} {
		if _, err := NewEvent(bad.network, bad.nick, bad.action, at); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("NewEvent(%q, %q) err = %v", bad.network, bad.nick, err)
		}
	}
}
