package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

type nodeSpec struct {
	name    string
	answers []string
}

type edgeSpec struct {
	from, to string
	keywords []string
}

// Builder collects nodes and edges by name and resolves them into a Graph.
// Nodes and edges keep the order in which they were declared.
type Builder struct {
	nodes []nodeSpec
	edges []edgeSpec
	root  string
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Node declares a node with its answers.
// Declaring the same name twice is reported by Build.
func (b *Builder) Node(name string, answers ...string) *Builder {
	b.nodes = append(b.nodes, nodeSpec{name: name, answers: append([]string(nil), answers...)})
	return b
}

// Edge declares a transition from one node to another guarded by keywords.
// Endpoints may be declared later; they are resolved by Build.
func (b *Builder) Edge(from, to string, keywords ...string) *Builder {
	b.edges = append(b.edges, edgeSpec{from: from, to: to, keywords: append([]string(nil), keywords...)})
	return b
}

// Root designates the entry node. Without it the first declared node is used.
func (b *Builder) Root(name string) *Builder {
	b.root = name
	return b
}

// Build resolves names into handles and validates the structure.
// All problems found are reported together.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		nodes:  make([]domain.Node, 0, len(b.nodes)),
		edges:  make([]domain.Edge, 0, len(b.edges)),
		byName: make(map[string]domain.NodeID, len(b.nodes)),
		root:   domain.InvalidNode,
	}

	var errs []error

	for _, decl := range b.nodes {
		if decl.name == "" {
			errs = append(errs, fmt.Errorf("node #%d: empty name", len(g.nodes)))
			continue
		}
		if _, dup := g.byName[decl.name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", domain.ErrDuplicateNode, decl.name))
			continue
		}
		id := domain.NodeID(len(g.nodes))
		g.byName[decl.name] = id
		g.nodes = append(g.nodes, domain.Node{
			ID:      id,
			Name:    decl.name,
			Answers: decl.answers,
		})
	}

	for _, decl := range b.edges {
		parent, okParent := g.byName[decl.from]
		child, okChild := g.byName[decl.to]
		if !okParent {
			errs = append(errs, &domain.DanglingEdgeError{From: decl.from, To: decl.to, Missing: decl.from})
		}
		if !okChild {
			errs = append(errs, &domain.DanglingEdgeError{From: decl.from, To: decl.to, Missing: decl.to})
		}
		if !okParent || !okChild {
			continue
		}

		id := domain.EdgeID(len(g.edges))
		g.edges = append(g.edges, domain.Edge{
			ID:       id,
			Keywords: decl.keywords,
			Parent:   parent,
			Child:    child,
		})
		g.nodes[parent].ChildEdges = append(g.nodes[parent].ChildEdges, id)
		g.nodes[child].ParentEdges = append(g.nodes[child].ParentEdges, id)
	}

	rootName := b.root
	if rootName == "" && len(b.nodes) > 0 {
		rootName = b.nodes[0].name
	}
	if id, ok := g.byName[rootName]; ok {
		g.root = id
	} else if rootName == "" {
		errs = append(errs, domain.ErrMissingRoot)
	} else {
		errs = append(errs, fmt.Errorf("%w: %q is not declared", domain.ErrMissingRoot, rootName))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid graph: %w", errors.Join(errs...))
	}
	return g, nil
}

// MustBuild is like Build but panics on error. Intended for tests and
// graphs compiled into the binary.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
