package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manyAnswers(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.NewBuilder().
		Node("root", "a", "b", "c", "d", "e").
		Node("mute").
		Edge("root", "mute", "shh").
		MustBuild()
}

func TestRespond_SameSeedSameAnswers(t *testing.T) {
	g := manyAnswers(t)

	draw := func(seed uint64) []string {
		engine := runtime.NewEngine(g, runtime.WithSeed(seed))
		out := make([]string, 0, 20)
		for i := 0; i < 20; i++ {
			answer, err := engine.Respond()
			require.NoError(t, err)
			out = append(out, answer)
		}
		return out
	}

	assert.Equal(t, draw(42), draw(42))
}

func TestRespond_CoversAllAnswers(t *testing.T) {
	g := manyAnswers(t)
	engine := runtime.NewEngine(g, runtime.WithRand(runtime.NewRand(3)))

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		answer, err := engine.Respond()
		require.NoError(t, err)
		seen[answer] = true
	}
	assert.Len(t, seen, 5)
}

func TestRespond_EmptyAnswersIsSurfaced(t *testing.T) {
	g := manyAnswers(t)

	var noAnswer []string
	hooks := domain.LifecycleHooks{
		OnNoAnswer: func(ctx context.Context, e *domain.NodeEvent) {
			noAnswer = append(noAnswer, e.NodeName)
		},
	}
	engine := runtime.NewEngine(g, runtime.WithLifecycleHooks(hooks))

	reply, err := engine.Reply(context.Background(), "shh")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAnswer)

	var typed *domain.NoAnswerError
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, "mute", typed.Node)

	// The move still happened.
	require.NotNil(t, reply)
	assert.Equal(t, "mute", reply.Node)
	assert.Empty(t, reply.Answer)
	assert.Equal(t, "mute", engine.CurrentName())
	assert.Equal(t, []string{"mute"}, noAnswer)

	// And the engine keeps working: mute has no edges, so fall back.
	reply, err = engine.Reply(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "root", reply.Node)
}

func TestEngine_Hooks(t *testing.T) {
	g := graph.NewBuilder().
		Node("root", "hi").
		Node("end", "bye").
		Edge("root", "end", "bye").
		MustBuild()

	var entered []string
	var matches, fallbacks []*domain.MatchEvent
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeName)
		},
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			matches = append(matches, e)
		},
		OnFallback: func(ctx context.Context, e *domain.MatchEvent) {
			fallbacks = append(fallbacks, e)
		},
	}

	engine := runtime.NewEngine(g, runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	_, err := engine.Greet(ctx)
	require.NoError(t, err)
	_, err = engine.Reply(ctx, "by")
	require.NoError(t, err)
	_, err = engine.Reply(ctx, "again")
	require.NoError(t, err)

	assert.Equal(t, []string{"root", "end", "root"}, entered)

	require.Len(t, matches, 1)
	assert.Equal(t, domain.EventMatch, matches[0].Type)
	assert.Equal(t, "root", matches[0].From)
	assert.Equal(t, "end", matches[0].To)
	assert.Equal(t, "bye", matches[0].Keyword)
	assert.Equal(t, 1, matches[0].Cost)
	assert.Equal(t, 1, matches[0].Candidates)

	require.Len(t, fallbacks, 1)
	assert.Equal(t, domain.EventFallback, fallbacks[0].Type)
	assert.Equal(t, "end", fallbacks[0].From)
	assert.Equal(t, "root", fallbacks[0].To)
}
