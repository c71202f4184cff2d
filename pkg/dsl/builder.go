package dsl

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/graph"
)

// Builder manages the graph construction.
type Builder struct {
	nodes []*NodeBuilder
	index map[string]*NodeBuilder
	root  string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		index: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(name string) *NodeBuilder {
	if nb, ok := b.index[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		name:    name,
		builder: b,
	}
	b.index[name] = nb
	b.nodes = append(b.nodes, nb)
	return nb
}

// Build compiles the declared nodes into an immutable graph.
func (b *Builder) Build() (*graph.Graph, error) {
	gb := graph.NewBuilder()
	for _, nb := range b.nodes {
		gb.Node(nb.name, nb.answers...)
	}
	for _, nb := range b.nodes {
		for _, t := range nb.transitions {
			gb.Edge(nb.name, t.target, t.keywords...)
		}
	}
	if b.root != "" {
		gb.Root(b.root)
	}

	g, err := gb.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// Load implements ports.GraphSource so a DSL graph can back an engine directly.
func (b *Builder) Load(ctx context.Context) (*graph.Graph, error) {
	return b.Build()
}
