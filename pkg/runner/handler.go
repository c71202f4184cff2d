package runner

import (
	"context"

	"github.com/aretw0/parley/pkg/ports"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Present prints the bot's reply.
	ports.Presenter

	// Input reads the next user message. It returns io.EOF when the input is
	// exhausted and ctx.Err() when ctx is cancelled.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. a resumed
	// session, a missing answer). This is distinct from the bot's replies.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms an answer before it is printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
