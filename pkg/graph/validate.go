package graph

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single authoring diagnostic.
type Issue struct {
	Severity Severity `json:"severity"`
	Node     string   `json:"node,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Node == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Node, i.Message)
}

// Validate inspects a built graph for authoring mistakes the builder accepts:
// reachable nodes without answers (errors, the engine cannot respond there),
// nodes unreachable from root and edges that carry no keywords (warnings).
func Validate(g *Graph) []Issue {
	var issues []Issue

	reachable := Reachable(g)

	for _, n := range g.nodes {
		if !reachable[n.ID] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Node:     n.Name,
				Message:  "unreachable from root",
			})
			continue
		}
		if !n.HasAnswers() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Node:     n.Name,
				Message:  "reachable node has no answers",
			})
		}
	}

	for _, e := range g.edges {
		if len(e.Keywords) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Node:     g.nodes[e.Parent].Name,
				Message:  fmt.Sprintf("edge to %q has no keywords and can never be matched", g.nodes[e.Child].Name),
			})
		}
	}

	return issues
}

// Reachable returns the set of nodes reachable from root through edges that
// carry at least one keyword. Root is always reachable through fallback.
func Reachable(g *Graph) map[domain.NodeID]bool {
	visited := make(map[domain.NodeID]bool, len(g.nodes))
	if !g.Has(g.root) {
		return visited
	}

	queue := []domain.NodeID{g.root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, eid := range g.nodes[current].ChildEdges {
			e := g.edges[eid]
			if len(e.Keywords) == 0 {
				continue
			}
			if !visited[e.Child] {
				queue = append(queue, e.Child)
			}
		}
	}
	return visited
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
