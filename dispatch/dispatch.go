// Package dispatch routes lifecycle notifications to hooks and addressed chat
// messages to command handlers.
//
// Handlers are registered explicitly on a Table by an initialization routine;
// the finished Table is handed to New. There is no package-level registry.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Request is a matched command invocation.
type Request struct {
	Origin
	// Target is where the reply goes: the channel, or the requester for
	// private messages.
	Target  string
	Source  string
	Text    string
	Match   []string
	Private bool
}

// CommandFunc handles a matched command and returns the reply text. An empty
// reply sends nothing.
type CommandFunc func(ctx context.Context, req Request) string

// HookFunc handles a lifecycle notification.
type HookFunc func(ctx context.Context, ev Event) error

// Sink delivers replies back to the chat network.
type Sink interface {
	Privmsg(target, text string)
}

type command struct {
	pattern *regexp.Regexp
	fn      CommandFunc
}

// Table collects command patterns and event hooks.
type Table struct {
	commands []command
	hooks    map[string][]HookFunc
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{hooks: make(map[string][]HookFunc)}
}

// Command registers fn for addressed messages matching pattern. The pattern
// is anchored at the start of the message and matched case-insensitively; it
// panics if pattern does not compile.
func (t *Table) Command(pattern string, fn CommandFunc) {
	re := regexp.MustCompile(`(?i)^(?:` + pattern + `)`)
	t.commands = append(t.commands, command{pattern: re, fn: fn})
}

// Hook registers fn for the named event. Hooks run in registration order.
func (t *Table) Hook(event string, fn HookFunc) {
	t.hooks[event] = append(t.hooks[event], fn)
}

// Options tune how messages are recognised as commands.
type Options struct {
	// Prefixes mark a channel message as a command, e.g. "!".
	Prefixes []string
}

// Dispatcher is safe for concurrent use once built.
type Dispatcher struct {
	commands []command
	hooks    map[string][]HookFunc
	sink     Sink
	prefixes []string
}

// New builds a dispatcher from a finished table.
func New(t *Table, sink Sink, opts Options) *Dispatcher {
	hooks := make(map[string][]HookFunc, len(t.hooks))
	for name, fns := range t.hooks {
		hooks[name] = append([]HookFunc(nil), fns...)
	}
	return &Dispatcher{
		commands: append([]command(nil), t.commands...),
		hooks:    hooks,
		sink:     sink,
		prefixes: opts.Prefixes,
	}
}

// Emit runs every hook registered for ev. A failing hook is logged and does
// not stop later hooks; all failures are returned joined.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, fn := range d.hooks[ev.Name()] {
		if err := fn(ctx, ev); err != nil {
			slog.Warn("hook failed",
				slog.String("event", ev.Name()),
				slog.String("network", ev.Source().Network),
				slog.Any("err", err),
				slog.String("component", "dispatch"))
			errs = append(errs, fmt.Errorf("%s hook: %w", ev.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// HandleMessage runs matching commands for an addressed message, replying
// through the sink, then emits the message to hooks.
func (d *Dispatcher) HandleMessage(ctx context.Context, m Message) error {
	if text, ok := d.addressed(m); ok {
		target := m.Channel
		if m.Private {
			target = m.Actor
		}
		for _, c := range d.commands {
			match := c.pattern.FindStringSubmatch(text)
			if match == nil {
				continue
			}
			reply := c.fn(ctx, Request{
				Origin:  m.Origin,
				Target:  target,
				Source:  m.Actor,
				Text:    text,
				Match:   match,
				Private: m.Private,
			})
			if reply != "" && d.sink != nil {
				d.sink.Privmsg(target, reply)
			}
		}
	}
	return d.Emit(ctx, m)
}

// addressed reports whether m is meant for the bot and returns the text with
// any prefix or "<nick>:" highlight removed. The highlight may end in ':',
// ',' or ';'.
func (d *Dispatcher) addressed(m Message) (string, bool) {
	text := strings.TrimSpace(m.Text)
	if m.Private {
		return text, true
	}
	for _, p := range d.prefixes {
		if p != "" && strings.HasPrefix(text, p) {
			return strings.TrimSpace(text[len(p):]), true
		}
	}
	if self := m.Self; self != "" && len(text) > len(self) && strings.EqualFold(text[:len(self)], self) {
		if rest := text[len(self):]; strings.IndexByte(":,;", rest[0]) >= 0 {
			return strings.TrimSpace(rest[1:]), true
		}
	}
	return "", false
}
