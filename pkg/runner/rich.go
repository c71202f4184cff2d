package runner

import (
	"context"
	"errors"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// RichResponse combines state and reply for rich clients (Web, MCP, etc).
type RichResponse struct {
	State    *domain.State `json:"state"`
	Reply    *domain.Reply `json:"reply"`
	NoAnswer bool          `json:"no_answer,omitempty"`
	// Sanitized is set when control characters were removed from the text.
	Sanitized bool              `json:"sanitized,omitempty"`
	Diff      *domain.StateDiff `json:"diff,omitempty"`
}

// Step sanitizes text and advances state by one turn.
// A missing answer is reported through NoAnswer rather than as an error,
// since the move itself succeeded.
func Step(ctx context.Context, engine ports.StatelessEngine, state *domain.State, text string) (*RichResponse, error) {
	clean, err := SanitizeInput(text)
	if err != nil {
		return nil, err
	}

	next, reply, err := engine.Navigate(ctx, state, clean)
	resp, err := respond(state, next, reply, err)
	if resp != nil {
		resp.Sanitized = clean != text
	}
	return resp, err
}

// Chat is Step for conversations kept by a session manager.
func Chat(ctx context.Context, chatter Chatter, sessionID, text string) (*RichResponse, error) {
	return ChatWith(ctx, chatter, SanitizeInput, sessionID, text)
}

// ChatWith is Chat with an explicit sanitizer. A nil sanitize uses
// SanitizeInput.
func ChatWith(ctx context.Context, chatter Chatter, sanitize SanitizeFunc, sessionID, text string) (*RichResponse, error) {
	if sanitize == nil {
		sanitize = SanitizeInput
	}
	clean, err := sanitize(text)
	if err != nil {
		return nil, err
	}

	next, reply, err := chatter.Chat(ctx, sessionID, clean)
	resp, err := respond(nil, next, reply, err)
	if resp != nil {
		resp.Sanitized = clean != text
	}
	return resp, err
}

// Chatter is implemented by session.Manager.
type Chatter interface {
	Chat(ctx context.Context, sessionID, text string) (*domain.State, *domain.Reply, error)
}

func respond(prev, next *domain.State, reply *domain.Reply, err error) (*RichResponse, error) {
	noAnswer := errors.Is(err, domain.ErrNoAnswer)
	if err != nil && !noAnswer {
		return nil, err
	}
	resp := &RichResponse{State: next, Reply: reply, NoAnswer: noAnswer}
	if prev != nil {
		resp.Diff = domain.Diff(prev, next)
	}
	return resp, nil
}
