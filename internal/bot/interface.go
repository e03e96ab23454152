// Package bot provides the Discord adapter.
//
// The adapter owns the gateway connection and translates the two ways a user
// can invoke the bot into one Request shape:
//
//   - prefix commands typed into a channel (for example "!search arsenal paid")
//   - slash commands with typed options
//
// Each Request carries a Responder that answers the invocation in the way
// the platform expects for its origin. Paged results are rendered onto an
// Anchor, whose button clicks are routed back to the pager waiting on it.
//
// # Thread Safety
//
// Discord handlers run concurrently. The handler passed to Start is called on
// its own goroutine per invocation and may block for as long as a browsing
// session lasts.
package bot

import (
	"context"

	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
)

// Handler processes one command invocation.
type Handler func(ctx context.Context, req Request)

// Request is a parsed command invocation.
type Request struct {
	Platform  string            // always "discord"
	Command   string            // lower-case command name without prefix
	Args      map[string]string // named arguments and upstream filters
	UserID    string
	ChannelID string
	Slash     bool
	Responder Responder
}

// Arg returns the named argument or def when it is absent or empty.
func (r Request) Arg(name, def string) string {
	if v, ok := r.Args[name]; ok && v != "" {
		return v
	}
	return def
}

// Responder answers one invocation.
type Responder interface {
	// Defer acknowledges the invocation before slow work starts.
	Defer(ctx context.Context) error
	// Reply posts doc as the visible answer to the invocation.
	Reply(ctx context.Context, doc render.Document) error
	// Edit replaces the answer posted by Reply.
	Edit(ctx context.Context, doc render.Document) error
	// Notice sends short text meant only for the invoker.
	Notice(ctx context.Context, text string) error
	// Anchor turns the answer posted by Reply into a pager display.
	Anchor() (AnchoredDisplay, error)
}

// AnchoredDisplay is a posted message a pager renders onto, together with
// the clicks on it.
type AnchoredDisplay interface {
	pager.Display
	MessageID() string
	Events() <-chan pager.Event
	// Close stops routing clicks to the display.
	Close()
}
