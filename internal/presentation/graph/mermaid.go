package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	dialogue "github.com/aretw0/parley/pkg/graph"
)

// GraphOverlay contains conversation data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a dialogue graph.
// It applies semantic styling:
// - Root: ((Circle))
// - No answers: [/Parallelogram/]
// - No outgoing edges: ([Stadium])
// - Default: [Rectangle]
// Edges are labelled with their keywords. Overlay styles (Visited/Current)
// are applied if provided.
func GenerateMermaid(g *dialogue.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		opener, closer := "[", "]"
		switch {
		case node.ID == g.Root():
			opener, closer = "((", "))"
		case !node.HasAnswers():
			opener, closer = "[/", "/]"
		case len(node.ChildEdges) == 0:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(node.ID), opener, escapeLabel(node.Name), closer)
	}

	for _, edge := range g.Edges() {
		arrow := "-->"
		if len(edge.Keywords) > 0 {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(strings.Join(edge.Keywords, " / ")))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(edge.Parent), arrow, mermaidID(edge.Child))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[domain.NodeID]bool)
		for _, name := range overlay.VisitedNodes {
			// History may name nodes removed by a reload.
			id, err := g.Lookup(name)
			if err != nil || visited[id] {
				continue
			}
			visited[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", mermaidID(id))
		}

		if id, err := g.Lookup(overlay.CurrentNode); err == nil {
			fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(id))
		}
	}

	return sb.String()
}

func mermaidID(id domain.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
