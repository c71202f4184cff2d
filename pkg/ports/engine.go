package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
)

// StatelessEngine defines the interface for dialogue cores that do not keep a
// conversation position themselves. Adapters (HTTP, MCP, sessions) hold the
// state and pass it in on every call.
type StatelessEngine interface {
	// Start creates a conversation at root and returns its greeting.
	Start(ctx context.Context, sessionID string) (*domain.State, *domain.Reply, error)

	// Navigate advances the conversation on user text, returning the new state.
	Navigate(ctx context.Context, state *domain.State, text string) (*domain.State, *domain.Reply, error)

	// Inspect returns the current graph for introspection.
	Inspect() *graph.Graph
}
