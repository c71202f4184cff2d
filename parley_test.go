package parley_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pizzaSource() *dsl.Builder {
	b := dsl.New()
	b.Add("start").Say("What would you like?").
		When("pizza", "order pizza", "buy pizza").
		When("silent", "quiet please")
	b.Add("pizza").Say("One pizza coming up.").
		When("start", "menu")
	b.Add("silent").Terminal()
	return b
}

func newEngine(t *testing.T, opts ...parley.Option) *parley.Engine {
	t.Helper()
	eng, err := parley.New(context.Background(), pizzaSource(), append([]parley.Option{parley.WithSeed(7)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := parley.New(context.Background(), nil)
	assert.Error(t, err)
}

type failingSource struct{}

func (failingSource) Load(context.Context) (*graph.Graph, error) {
	return nil, errors.New("disk on fire")
}

func TestNew_LoadError(t *testing.T) {
	_, err := parley.New(context.Background(), failingSource{})
	assert.ErrorContains(t, err, "disk on fire")
}

func TestEngine_StartAndNavigate(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	state, greeting, err := eng.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentNode)
	assert.Equal(t, "What would you like?", greeting.Answer)
	assert.Equal(t, []string{"start"}, state.History)

	next, reply, err := eng.Navigate(ctx, state, "I want to order a pizza")
	require.NoError(t, err)
	assert.Equal(t, "pizza", reply.Node)
	assert.Equal(t, "order pizza", reply.Keyword)
	assert.Equal(t, "One pizza coming up.", reply.Answer)
	assert.Equal(t, 1, next.Turns)
	assert.Equal(t, []string{"start", "pizza"}, next.History)

	// The input state is never modified.
	assert.Equal(t, "start", state.CurrentNode)
	assert.Equal(t, 0, state.Turns)
}

func TestEngine_NavigateFallsBackToRoot(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	state, _, err := eng.Start(ctx, "s1")
	require.NoError(t, err)

	state, _, err = eng.Navigate(ctx, state, "quiet please")
	require.ErrorIs(t, err, domain.ErrNoAnswer)
	assert.Equal(t, "silent", state.CurrentNode)

	// A node with no edges sends every input back to root.
	state, reply, err := eng.Navigate(ctx, state, "anything")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, "start", state.CurrentNode)
}

func TestEngine_NavigateUnknownNodeResumesAtRoot(t *testing.T) {
	eng := newEngine(t)

	state := domain.NewState("s1", "vanished")
	next, reply, err := eng.Navigate(context.Background(), state, "order pizza")
	require.NoError(t, err)
	assert.Equal(t, "pizza", reply.Node)
	assert.Equal(t, "pizza", next.CurrentNode)
}

func TestEngine_NavigateNilState(t *testing.T) {
	eng := newEngine(t)
	_, _, err := eng.Navigate(context.Background(), nil, "hi")
	assert.Error(t, err)
}

func TestEngine_Explain(t *testing.T) {
	eng := newEngine(t)

	matches := eng.Explain(domain.NewState("s1", "start"), "buy a pizza")
	require.Len(t, matches, 3)
	assert.Equal(t, domain.Match{From: "start", To: "pizza", Keyword: "buy pizza", Cost: 2}, matches[0])
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Cost, matches[i].Cost)
	}

	assert.Empty(t, eng.Explain(domain.NewState("s1", "silent"), "hi"))
}

func TestEngine_SeedIsDeterministic(t *testing.T) {
	b := dsl.New()
	b.Add("start").Say("a", "b", "c", "d", "e", "f")

	run := func() []string {
		eng, err := parley.New(context.Background(), b, parley.WithSeed(42))
		require.NoError(t, err)
		state, _, err := eng.Start(context.Background(), "s")
		require.NoError(t, err)

		var out []string
		for range 20 {
			var reply *domain.Reply
			state, reply, err = eng.Navigate(context.Background(), state, "x")
			require.NoError(t, err)
			out = append(out, reply.Answer)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestEngine_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - name: hello\n    answer: hi\n"), 0644))

	ctx := context.Background()
	eng, err := parley.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "bot", eng.Name)
	assert.Equal(t, "hello", eng.Inspect().Name(eng.Inspect().Root()))

	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - name: howdy\n    answer: yo\n"), 0644))
	require.NoError(t, eng.Reload(ctx))
	assert.Equal(t, "howdy", eng.Inspect().Name(eng.Inspect().Root()))

	// A broken file keeps the previous graph.
	require.NoError(t, os.WriteFile(path, []byte("nodes: ["), 0644))
	assert.Error(t, eng.Reload(ctx))
	assert.Equal(t, "howdy", eng.Inspect().Name(eng.Inspect().Root()))
}

func TestEngine_WatchUnsupported(t *testing.T) {
	_, err := newEngine(t).Watch(context.Background())
	assert.Error(t, err)
}

func TestSourceFor(t *testing.T) {
	_, err := parley.SourceFor("")
	assert.Error(t, err)

	_, err = parley.SourceFor(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "invalid graph path")

	_, err = parley.SourceFor(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = parley.SourceFor(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "invalid graph path")

	txt := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))
	_, err = parley.SourceFor(txt)
	assert.ErrorContains(t, err, "unsupported")
}

func TestEngine_Hooks(t *testing.T) {
	var mu sync.Mutex
	var entered []string
	eng := newEngine(t, parley.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			mu.Lock()
			defer mu.Unlock()
			entered = append(entered, e.NodeName)
		},
	}))

	state, _, err := eng.Start(context.Background(), "s")
	require.NoError(t, err)
	_, _, err = eng.Navigate(context.Background(), state, "order pizza")
	require.NoError(t, err)

	assert.Contains(t, entered, "pizza")
}

func TestEngine_ConcurrentNavigate(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, _, err := eng.Start(ctx, "s")
			assert.NoError(t, err)
			_, reply, err := eng.Navigate(ctx, state, "order pizza")
			assert.NoError(t, err)
			assert.Equal(t, "pizza", reply.Node)
		}()
	}
	wg.Wait()
}

func TestEngine_Conversation(t *testing.T) {
	conv := newEngine(t).Conversation()
	reply, err := conv.Reply(context.Background(), "order pizza")
	require.NoError(t, err)
	assert.Equal(t, "pizza", reply.Node)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, parley.Version)
}

func TestOpen_ExampleGraph(t *testing.T) {
	ctx := context.Background()
	eng, err := parley.Open(ctx, filepath.Join("examples", "pizza.yaml"), parley.WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, "pizza", eng.Name)
	assert.False(t, graph.HasErrors(graph.Validate(eng.Inspect())))

	state, _, err := eng.Start(ctx, "demo")
	require.NoError(t, err)
	_, reply, err := eng.Navigate(ctx, state, "order pizza")
	require.NoError(t, err)
	assert.Equal(t, "pizza", reply.Node)
}
