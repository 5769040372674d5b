package dispatch

// Event names used as hook keys.
const (
	EventJoin        = "join"
	EventPart        = "part"
	EventQuit        = "quit"
	EventKick        = "kick"
	EventNickChange  = "nickchange"
	EventMessage     = "message"
	EventNotice      = "notice"
	EventTopicChange = "topicchange"
	EventCtcp        = "ctcp"
)

// EventNames lists every lifecycle notification a transport can emit.
var EventNames = []string{
	EventJoin, EventPart, EventQuit, EventKick, EventNickChange,
	EventMessage, EventNotice, EventTopicChange, EventCtcp,
}

// Origin identifies the connection a notification arrived on: the network
// tag and the bot's own current nickname there.
type Origin struct {
	Network string
	Self    string
}

// Source returns the origin itself so embedding types satisfy Event.
func (o Origin) Source() Origin { return o }

// Event is a lifecycle notification delivered by a transport.
type Event interface {
	Name() string
	Source() Origin
}

type Join struct {
	Origin
	Channel string
	Actor   string
}

type Part struct {
	Origin
	Channel string
	Actor   string
	Reason  string
}

type Quit struct {
	Origin
	Actor  string
	Reason string
}

// Kick is Target being removed from Channel by By.
type Kick struct {
	Origin
	Channel string
	Target  string
	By      string
	Reason  string
}

type NickChange struct {
	Origin
	OldNick string
	NewNick string
}

// Message is a PRIVMSG. Private is set for direct messages to the bot, in
// which case Channel is empty.
type Message struct {
	Origin
	Channel string
	Actor   string
	Text    string
	Private bool
}

type Notice struct {
	Origin
	Channel string
	Actor   string
	Text    string
	Private bool
}

type TopicChange struct {
	Origin
	Channel string
	Actor   string
	Topic   string
}

// Ctcp is a CTCP request from Actor to Target, which is either a channel or
// a nickname.
type Ctcp struct {
	Origin
	Target string
	Actor  string
	Text   string
}

func (Join) Name() string        { return EventJoin }
func (Part) Name() string        { return EventPart }
func (Quit) Name() string        { return EventQuit }
func (Kick) Name() string        { return EventKick }
func (NickChange) Name() string  { return EventNickChange }
func (Message) Name() string     { return EventMessage }
func (Notice) Name() string      { return EventNotice }
func (TopicChange) Name() string { return EventTopicChange }
func (Ctcp) Name() string        { return EventCtcp }
