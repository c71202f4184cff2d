package dsl

import "github.com/aretw0/parley/pkg/graph"

type transition struct {
	target   string
	keywords []string
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	name        string
	answers     []string
	transitions []transition
	builder     *Builder
}

// Say appends answers to the node. One is picked at random on arrival.
func (n *NodeBuilder) Say(answers ...string) *NodeBuilder {
	n.answers = append(n.answers, answers...)
	return n
}

// When adds a transition to target, taken when the input is closest to one of keywords.
func (n *NodeBuilder) When(target string, keywords ...string) *NodeBuilder {
	n.transitions = append(n.transitions, transition{
		target:   target,
		keywords: keywords,
	})
	return n
}

// Root marks the node as the entry point of the graph.
func (n *NodeBuilder) Root() *NodeBuilder {
	n.builder.root = n.name
	return n
}

// Terminal removes all transitions; any input from here falls back to root.
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.transitions = nil
	return n
}

// Add continues the chain with another node of the same graph.
func (n *NodeBuilder) Add(name string) *NodeBuilder {
	return n.builder.Add(name)
}

// Build ends the chain and compiles the whole graph.
func (n *NodeBuilder) Build() (*graph.Graph, error) {
	return n.builder.Build()
}
