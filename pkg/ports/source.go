package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/graph"
)

// GraphSource supplies a fully built and validated dialogue graph.
// Parsing and storage format are the source's concern; the engine only ever
// sees a graph whose references are all resolved.
type GraphSource interface {
	Load(ctx context.Context) (*graph.Graph, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying graph changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
