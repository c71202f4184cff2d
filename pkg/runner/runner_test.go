package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *parley.Engine {
	t.Helper()

	b := dsl.New()
	b.Add("start").Say("Welcome to the pizzeria").
		When("pizza", "order pizza").
		When("silent", "quiet please")
	b.Add("pizza").Say("**One** pizza coming up.").
		When("start", "menu")
	b.Add("silent").Terminal()

	eng, err := parley.New(context.Background(), b, parley.WithSeed(3))
	require.NoError(t, err)
	return eng
}

func run(t *testing.T, r *runner.Runner, eng *parley.Engine, sessionID string) (*domain.State, error) {
	t.Helper()

	type result struct {
		state *domain.State
		err   error
	}
	done := make(chan result, 1)
	go func() {
		state, err := r.Run(t.Context(), eng, sessionID)
		done <- result{state, err}
	}()

	select {
	case res := <-done:
		return res.state, res.err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not finish")
		return nil, nil
	}
}

func TestRunner_Run_BasicFlow(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithHeadless(true))
	r.Input = strings.NewReader("I want to order pizza\n\nexit\n")
	r.Output = out

	state, err := run(t, r, newEngine(t), "")
	require.NoError(t, err)
	assert.Equal(t, "pizza", state.CurrentNode)

	assert.Equal(t, "Welcome to the pizzeria\n**One** pizza coming up.\n", out.String())
}

func TestRunner_Run_RendererAndBanner(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.NewRunner(
		runner.WithHeadless(false),
		runner.WithBanner("== parley =="),
		runner.WithRenderer(func(s string) (string, error) {
			return strings.ToUpper(s), nil
		}),
	)
	r.Input = strings.NewReader("order pizza\n")
	r.Output = out

	_, err := run(t, r, newEngine(t), "")
	require.NoError(t, err)

	// The greeting comes before the first prompt.
	assert.Equal(t, "== parley ==\nWELCOME TO THE PIZZERIA\n> **ONE** PIZZA COMING UP.\n> ", out.String())
}

func TestRunner_Run_NoAnswer(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithHeadless(true))
	r.Input = strings.NewReader("quiet please\nanything\n")
	r.Output = out

	state, err := run(t, r, newEngine(t), "")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[System] no response available (silent)")
	// The terminal node sends the next message back to root.
	assert.Equal(t, "start", state.CurrentNode)
	assert.Equal(t, 2, state.Turns)
}

func TestRunner_Run_ResumesStoredSession(t *testing.T) {
	store := memory.NewStore()
	eng := newEngine(t)

	r := runner.NewRunner(runner.WithHeadless(true), runner.WithStore(store))
	r.Input = strings.NewReader("order pizza\nquit\n")
	r.Output = &bytes.Buffer{}
	_, err := run(t, r, eng, "user-1")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	r = runner.NewRunner(runner.WithHeadless(true), runner.WithStore(store))
	r.Input = strings.NewReader("menu\n")
	r.Output = out
	state, err := run(t, r, eng, "user-1")
	require.NoError(t, err)

	assert.Contains(t, out.String(), `Resuming session user-1 at "pizza".`)
	assert.Equal(t, "start", state.CurrentNode)
	assert.Equal(t, []string{"start", "pizza", "start"}, state.History)
}

func TestRunner_Run_ContextCancel(t *testing.T) {
	r := runner.NewRunner(runner.WithHeadless(true))
	reader, _ := ioPipe()
	r.Input = reader
	r.Output = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx, newEngine(t), "")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner ignored cancellation")
	}
}

func TestRunner_Run_JSONHandler(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(
		runner.NewJSONHandler(strings.NewReader(`{"text":"order pizza"}`+"\n"), out),
	))

	_, err := run(t, r, newEngine(t), "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"reply","reply":{"node":"start","answer":"Welcome to the pizzeria"}}`, lines[0])
	assert.JSONEq(t, `{"type":"reply","reply":{"node":"pizza","answer":"**One** pizza coming up.","keyword":"order pizza"}}`, lines[1])
}
