/*
Package graph holds the dialogue graph: an arena of nodes and an arena of
edges that refer to each other through integer handles.

A Graph is immutable once built, so it can be shared by any number of
conversations and read concurrently without locking. Use Builder (or the
dsl package) to construct one.
*/
package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/parley/pkg/domain"
)

// Graph owns every node and edge of a dialogue.
type Graph struct {
	nodes  []domain.Node
	edges  []domain.Edge
	byName map[string]domain.NodeID
	root   domain.NodeID
}

// Root returns the designated entry node.
func (g *Graph) Root() domain.NodeID {
	return g.root
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Has reports whether id refers to a node of this graph.
func (g *Graph) Has(id domain.NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns a copy of the node behind a handle.
// It panics on a foreign handle; handles only come from this graph.
func (g *Graph) Node(id domain.NodeID) domain.Node {
	return cloneNode(g.node(id))
}

// Edge returns a copy of the edge behind a handle.
func (g *Graph) Edge(id domain.EdgeID) domain.Edge {
	return cloneEdge(g.edge(id))
}

func (g *Graph) node(id domain.NodeID) *domain.Node {
	if !g.Has(id) {
		panic(fmt.Sprintf("graph: node handle %d out of range", id))
	}
	return &g.nodes[id]
}

func (g *Graph) edge(id domain.EdgeID) *domain.Edge {
	if id < 0 || int(id) >= len(g.edges) {
		panic(fmt.Sprintf("graph: edge handle %d out of range", id))
	}
	return &g.edges[id]
}

// The arenas are shared by every conversation, so nothing handed out may
// alias their slices.
func cloneNode(n *domain.Node) domain.Node {
	out := *n
	out.Answers = slices.Clone(n.Answers)
	out.ChildEdges = slices.Clone(n.ChildEdges)
	out.ParentEdges = slices.Clone(n.ParentEdges)
	return out
}

func cloneEdge(e *domain.Edge) domain.Edge {
	out := *e
	out.Keywords = slices.Clone(e.Keywords)
	return out
}

// Lookup resolves a node name to its handle.
func (g *Graph) Lookup(name string) (domain.NodeID, error) {
	id, ok := g.byName[name]
	if !ok {
		return domain.InvalidNode, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, name)
	}
	return id, nil
}

// Name returns the authoring name of a node.
func (g *Graph) Name(id domain.NodeID) string {
	return g.node(id).Name
}

// OutgoingEdges returns, in authoring order, every edge whose parent is node.
func (g *Graph) OutgoingEdges(node domain.NodeID) []domain.EdgeID {
	return slices.Clone(g.node(node).ChildEdges)
}

// IncomingEdges returns, in authoring order, every edge whose child is node.
func (g *Graph) IncomingEdges(node domain.NodeID) []domain.EdgeID {
	return slices.Clone(g.node(node).ParentEdges)
}

// KeywordsOf returns the trigger keywords of an edge in authoring order.
func (g *Graph) KeywordsOf(edge domain.EdgeID) []string {
	return slices.Clone(g.edge(edge).Keywords)
}

// TargetOf returns the child node of an edge.
func (g *Graph) TargetOf(edge domain.EdgeID) domain.NodeID {
	return g.edge(edge).Child
}

// SourceOf returns the parent node of an edge.
func (g *Graph) SourceOf(edge domain.EdgeID) domain.NodeID {
	return g.edge(edge).Parent
}

// Nodes returns a copy of the node arena in handle order.
func (g *Graph) Nodes() []domain.Node {
	out := make([]domain.Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = cloneNode(&g.nodes[i])
	}
	return out
}

// Edges returns a copy of the edge arena in handle order.
func (g *Graph) Edges() []domain.Edge {
	out := make([]domain.Edge, len(g.edges))
	for i := range g.edges {
		out[i] = cloneEdge(&g.edges[i])
	}
	return out
}
