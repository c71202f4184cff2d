package tests

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Expectation describes what a loaded graph must contain.
type Expectation struct {
	Root string
	// Edges maps a node name to the ordered targets of its outgoing edges.
	Edges map[string][]string
	// Answers maps a node name to its answers, in order.
	Answers map[string][]string
}

// GraphSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphSource.
func GraphSourceContractTest(t *testing.T, source ports.GraphSource, want Expectation) {
	t.Helper()

	g, err := source.Load(context.Background())
	require.NoError(t, err, "Load should not return error")
	require.NotNil(t, g)

	t.Run("Root", func(t *testing.T) {
		assert.Equal(t, want.Root, g.Name(g.Root()))
	})

	t.Run("Edges", func(t *testing.T) {
		for name, targets := range want.Edges {
			id, err := g.Lookup(name)
			require.NoError(t, err, "node %s should exist", name)

			got := []string{}
			for _, e := range g.OutgoingEdges(id) {
				assert.Equal(t, id, g.SourceOf(e))
				got = append(got, g.Name(g.TargetOf(e)))
			}
			if len(targets) == 0 {
				assert.Empty(t, got, "outgoing edges of %s", name)
				continue
			}
			assert.Equal(t, targets, got, "outgoing edges of %s", name)
		}
	})

	t.Run("Answers", func(t *testing.T) {
		for name, answers := range want.Answers {
			id, err := g.Lookup(name)
			require.NoError(t, err, "node %s should exist", name)
			if len(answers) == 0 {
				assert.Empty(t, g.Node(id).Answers, "answers of %s", name)
				continue
			}
			assert.Equal(t, answers, g.Node(id).Answers, "answers of %s", name)
		}
	})

	t.Run("Stable", func(t *testing.T) {
		again, err := source.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, g.Len(), again.Len())
		assert.Equal(t, g.Name(g.Root()), again.Name(again.Root()))
	})
}
