package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/presentation/graph"
	dialogue "github.com/aretw0/parley/pkg/graph"
	"github.com/stretchr/testify/assert"
)

func pizzaGraph() *dialogue.Graph {
	return dialogue.NewBuilder().
		Node("start", "Hi").
		Node("pizza", "One pizza").
		Node("silent").
		Node("bye", "Bye").
		Edge("start", "pizza", "order pizza", "buy pizza").
		Edge("start", "silent", `say "shh"`).
		Edge("pizza", "bye", "thanks").
		Edge("pizza", "start").
		MustBuild()
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(pizzaGraph(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	for _, want := range []string{
		`n0(("start"))`,
		`n1["pizza"]`,
		`n2[/"silent"/]`,
		`n3(["bye"])`,
		`n0 -- "order pizza / buy pizza" --> n1`,
		`n0 -- "say #quot;shh#quot;" --> n2`,
		`n1 -- "thanks" --> n3`,
		`n1 --> n0`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(pizzaGraph(), &graph.GraphOverlay{
		VisitedNodes: []string{"pizza", "pizza", "removed", "bye"},
		CurrentNode:  "bye",
	})

	assert.Contains(t, out, "classDef visited")
	assert.Equal(t, 1, strings.Count(out, "class n1 visited;"))
	assert.Contains(t, out, "class n3 visited;")
	assert.Contains(t, out, "class n3 current;")
	assert.NotContains(t, out, "removed")
}
