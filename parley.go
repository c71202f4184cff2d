package parley

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/runtime"
	loamAdapter "github.com/aretw0/parley/pkg/adapters/loam"
	yamlAdapter "github.com/aretw0/parley/pkg/adapters/yaml"
	"github.com/aretw0/parley/pkg/distance"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/aretw0/parley/pkg/ports"
)

// Engine is the high-level entry point for the parley library.
// It owns the dialogue graph and answers for any number of conversations
// whose state the caller keeps. It is safe for concurrent use.
type Engine struct {
	source ports.GraphSource

	mu    sync.RWMutex
	graph *graph.Graph

	rand   *rand.Rand
	seed   *uint64
	scorer distance.Scorer
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSeed makes answer selection deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// WithScorer replaces the keyword distance function.
func WithScorer(scorer distance.Scorer) Option {
	return func(e *Engine) {
		e.scorer = scorer
	}
}

// WithName labels the engine in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New loads the graph from source and initializes an Engine.
func New(ctx context.Context, source ports.GraphSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, errors.New("graph source is required")
	}

	eng := &Engine{
		source: source,
		scorer: distance.Score,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}

	seed := uint64(time.Now().UnixNano())
	if eng.seed != nil {
		seed = *eng.seed
	}
	eng.rand = rand.New(&lockedSource{src: runtime.NewSource(seed)})

	g, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	eng.graph = g
	eng.logger.Debug("graph loaded", "nodes", g.Len(), "root", g.Name(g.Root()))

	return eng, nil
}

// Open picks a graph source for path: a directory is read as a Loam
// repository of markdown nodes, a .yaml/.yml file with the YAML source.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	source, err := SourceFor(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(ctx, source, append([]Option{WithName(name)}, opts...)...)
}

// SourceFor resolves the graph source for a filesystem path.
func SourceFor(path string) (ports.GraphSource, error) {
	if path == "" {
		return nil, errors.New("graph path is required")
	}
	ext := strings.ToLower(filepath.Ext(path))
	isYAML := ext == ".yaml" || ext == ".yml"
	unsupported := fmt.Errorf("unsupported graph file %q (want a directory or .yaml)", path)

	info, err := os.Stat(path)
	if err != nil {
		// The extension alone rules out a missing non-YAML file.
		if ext != "" && !isYAML {
			return nil, unsupported
		}
		return nil, fmt.Errorf("invalid graph path: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.Open(path)
	}
	if !isYAML {
		return nil, unsupported
	}
	return yamlAdapter.NewLoader(path), nil
}

// Start creates a conversation at root and returns the root's greeting.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, *domain.Reply, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	conv := e.newRuntime(e.graph)
	state := domain.NewState(sessionID, conv.CurrentName())
	reply, err := conv.Greet(ctx)
	return state, reply, err
}

// Navigate advances the conversation held in state on user text.
// It returns a new state; the one passed in is not modified. If the state
// points at a node that no longer exists (after a reload) the conversation
// resumes from root. A domain.ErrNoAnswer error comes with a valid state and
// reply.
func (e *Engine) Navigate(ctx context.Context, state *domain.State, text string) (*domain.State, *domain.Reply, error) {
	if state == nil {
		return nil, nil, errors.New("navigate: state is nil")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	conv := e.restore(state)
	reply, err := conv.Reply(ctx, text)

	next := state.Clone()
	next.CurrentNode = reply.Node
	next.History = append(next.History, reply.Node)
	next.Turns++
	next.UpdatedAt = time.Now().UTC()

	return next, reply, err
}

// Explain returns how text would be scored from the state's current node,
// best candidate first, without moving.
func (e *Engine) Explain(state *domain.State, text string) []domain.Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	conv := e.restore(state)
	candidates := conv.Rank(text)

	matches := make([]domain.Match, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, domain.Match{
			From:    conv.CurrentName(),
			To:      e.graph.Name(c.Target),
			Keyword: c.Keyword,
			Cost:    c.Cost,
		})
	}
	return matches
}

// Conversation returns a stateful engine at root for single-conversation
// embedding. It keeps the graph it was created with across reloads.
func (e *Engine) Conversation() *runtime.Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.newRuntime(e.graph)
}

// Inspect returns the current graph.
func (e *Engine) Inspect() *graph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// Reload loads the graph again from the source and swaps it in.
// Traversals in progress finish on the old graph.
func (e *Engine) Reload(ctx context.Context) error {
	g, err := e.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload graph: %w", err)
	}

	e.mu.Lock()
	e.graph = g
	e.mu.Unlock()

	e.logger.Info("graph reloaded", "nodes", g.Len())
	return nil
}

// Watch returns a channel that signals when the underlying graph changes.
// Returns error if the source does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current graph source does not support watching")
}

// WatchAndReload reloads the graph on every change until ctx is done.
// A failed reload keeps the previous graph.
func (e *Engine) WatchAndReload(ctx context.Context) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := e.Reload(ctx); err != nil {
				e.logger.Error("reload failed, keeping previous graph", "err", err)
			}
		}
	}
}

// Source returns the graph source used by the engine.
func (e *Engine) Source() ports.GraphSource {
	return e.source
}

func (e *Engine) newRuntime(g *graph.Graph) *runtime.Engine {
	return runtime.NewEngine(g,
		runtime.WithRand(e.rand),
		runtime.WithScorer(e.scorer),
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	)
}

// restore must be called with e.mu held.
func (e *Engine) restore(state *domain.State) *runtime.Engine {
	conv := e.newRuntime(e.graph)
	if state == nil {
		return conv
	}
	if err := conv.Restore(state.CurrentNode); err != nil {
		e.logger.Warn("session node not in graph, resuming at root",
			"session_id", state.SessionID,
			"node", state.CurrentNode,
		)
	}
	return conv
}

// lockedSource serializes access to a rand.Source shared by concurrent conversations.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}
