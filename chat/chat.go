package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/seenbot/dispatch"
)

// Handler receives translated notifications. *dispatch.Dispatcher implements it.
type Handler interface {
	Emit(ctx context.Context, ev dispatch.Event) error
	HandleMessage(ctx context.Context, m dispatch.Message) error
}

// Bridge maps Twitch IRC callbacks onto a Handler.
type Bridge struct {
	Network string
	// Self is the bot's login name, lowercased.
	Self     string
	Channels []string
	Handler  Handler
}

// NewClient returns a Twitch IRC client that receives JOIN/PART membership.
func NewClient(username, oauthToken string) *twitch.Client {
	client := twitch.NewClient(username, oauthToken)
	client.Capabilities = []string{twitch.TagsCapability, twitch.CommandsCapability, twitch.MembershipCapability}
	return client
}

// Sink sends replies through a Twitch client.
type Sink struct{ Client *twitch.Client }

// Privmsg says text in target. A leading "#" is accepted.
func (s Sink) Privmsg(target, text string) {
	s.Client.Say(strings.TrimPrefix(target, "#"), text)
}

func (b *Bridge) origin() dispatch.Origin {
	return dispatch.Origin{Network: b.Network, Self: b.Self}
}

func channelName(ch string) string { return "#" + strings.TrimPrefix(ch, "#") }

// Attach registers the bridge's callbacks on client. ctx is passed to every
// handler call.
func (b *Bridge) Attach(ctx context.Context, client *twitch.Client) {
	client.OnConnect(func() {
		slog.Info("twitch chat connected", slog.Any("channels", b.Channels), slog.String("component", "chat"))
	})
	client.OnUserJoinMessage(func(m twitch.UserJoinMessage) { b.report(b.Handler.Emit(ctx, b.fromJoin(m))) })
	client.OnUserPartMessage(func(m twitch.UserPartMessage) { b.report(b.Handler.Emit(ctx, b.fromPart(m))) })
	client.OnPrivateMessage(func(m twitch.PrivateMessage) { b.onPrivateMessage(ctx, m) })
	client.OnWhisperMessage(func(m twitch.WhisperMessage) { b.report(b.Handler.Emit(ctx, b.fromWhisper(m))) })
	client.OnClearChatMessage(func(m twitch.ClearChatMessage) {
		if ev, ok := b.fromClearChat(m); ok {
			b.report(b.Handler.Emit(ctx, ev))
		}
	})
	client.OnUserNoticeMessage(func(m twitch.UserNoticeMessage) {
		if ev, ok := b.fromUserNotice(m); ok {
			b.report(b.Handler.Emit(ctx, ev))
		}
	})
}

// report logs at debug; the dispatcher already warns about failing hooks.
func (b *Bridge) report(err error) {
	if err != nil {
		slog.Debug("chat notification not fully handled", slog.Any("err", err), slog.String("component", "chat"))
	}
}

func (b *Bridge) onPrivateMessage(ctx context.Context, m twitch.PrivateMessage) {
	if m.Action {
		b.report(b.Handler.Emit(ctx, dispatch.Ctcp{
			Origin: b.origin(),
			Target: channelName(m.Channel),
			Actor:  m.User.Name,
			Text:   "ACTION " + m.Message,
		}))
		return
	}
	b.report(b.Handler.HandleMessage(ctx, dispatch.Message{
		Origin:  b.origin(),
		Channel: channelName(m.Channel),
		Actor:   m.User.Name,
		Text:    m.Message,
	}))
}

func (b *Bridge) fromJoin(m twitch.UserJoinMessage) dispatch.Join {
	return dispatch.Join{Origin: b.origin(), Channel: channelName(m.Channel), Actor: m.User}
}

func (b *Bridge) fromPart(m twitch.UserPartMessage) dispatch.Part {
	return dispatch.Part{Origin: b.origin(), Channel: channelName(m.Channel), Actor: m.User}
}

func (b *Bridge) fromWhisper(m twitch.WhisperMessage) dispatch.Message {
	return dispatch.Message{Origin: b.origin(), Actor: m.User.Name, Text: m.Message, Private: true}
}

// fromClearChat reports bans and timeouts. A CLEARCHAT without a target
// clears the whole channel and is ignored.
func (b *Bridge) fromClearChat(m twitch.ClearChatMessage) (dispatch.Kick, bool) {
	if m.TargetUsername == "" {
		return dispatch.Kick{}, false
	}
	reason := "banned"
	if m.BanDuration > 0 {
		reason = fmt.Sprintf("timed out for %ds", m.BanDuration)
	}
	return dispatch.Kick{
		Origin:  b.origin(),
		Channel: channelName(m.Channel),
		Target:  m.TargetUsername,
		By:      strings.TrimPrefix(m.Channel, "#"),
		Reason:  reason,
	}, true
}

func (b *Bridge) fromUserNotice(m twitch.UserNoticeMessage) (dispatch.Notice, bool) {
	if m.User.Name == "" {
		return dispatch.Notice{}, false
	}
	text := m.Message
	if text == "" {
		text = m.SystemMsg
	}
	return dispatch.Notice{Origin: b.origin(), Channel: channelName(m.Channel), Actor: m.User.Name, Text: text}, true
}

// Run attaches the bridge, joins the configured channels and blocks until ctx
// is cancelled or the client fails permanently (for example a rejected login).
// The client reconnects on its own after transient network errors.
func (b *Bridge) Run(ctx context.Context, client *twitch.Client) error {
	if len(b.Channels) == 0 {
		return fmt.Errorf("chat: no channels configured")
	}
	b.Attach(ctx, client)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Disconnect()
		case <-stop:
		}
	}()

	for _, ch := range b.Channels {
		client.Join(strings.ToLower(strings.TrimPrefix(ch, "#")))
	}
	err := client.Connect()
	if errors.Is(err, twitch.ErrClientDisconnected) || ctx.Err() != nil {
		slog.Info("twitch chat disconnected", slog.String("component", "chat"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("twitch chat connect: %w", err)
	}
	return nil
}
