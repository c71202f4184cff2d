package runtime

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/distance"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
)

// Engine moves a single conversation position through a dialogue graph.
//
// An Engine is not safe for concurrent use: it is driven by one input at a
// time and each call runs to completion. Several engines may share one graph.
type Engine struct {
	graph   *graph.Graph
	root    domain.NodeID
	current domain.NodeID

	scorer distance.Scorer
	rng    *rand.Rand
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	owner any
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithScorer replaces the keyword distance function.
func WithScorer(scorer distance.Scorer) EngineOption {
	return func(e *Engine) {
		if scorer != nil {
			e.scorer = scorer
		}
	}
}

// WithRand injects the generator used to pick answers.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed seeds the answer generator deterministically.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) {
		e.rng = NewRand(seed)
	}
}

// NewRand returns a generator seeded once with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(NewSource(seed))
}

// NewSource returns the PCG source behind NewRand.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NewEngine creates an engine positioned at the root of g.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:   g,
		root:    domain.InvalidNode,
		current: domain.InvalidNode,
		scorer:  distance.Score,
		logger:  logging.NewNop(),
	}
	if g != nil {
		e.root = g.Root()
		e.current = e.root
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.rng = NewRand(uint64(time.Now().UnixNano()))
	}
	return e
}

// Graph returns the graph the engine traverses.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Root returns the entry node.
func (e *Engine) Root() domain.NodeID {
	e.mustBeInitialized()
	return e.root
}

// Current returns the active node.
func (e *Engine) Current() domain.NodeID {
	e.mustBeInitialized()
	return e.current
}

// CurrentName returns the authoring name of the active node.
func (e *Engine) CurrentName() string {
	return e.graph.Name(e.Current())
}

// Restore positions the engine at a named node, as when resuming a session.
func (e *Engine) Restore(name string) error {
	e.mustBeInitialized()
	id, err := e.graph.Lookup(name)
	if err != nil {
		return err
	}
	e.current = id
	return nil
}

// Reset moves the engine back to root.
func (e *Engine) Reset() {
	e.mustBeInitialized()
	e.current = e.root
}

// SetOwner registers an opaque handle to whoever drives this engine.
// The engine stores it for presentation layers and never calls it.
func (e *Engine) SetOwner(handle any) {
	e.owner = handle
}

// Owner returns the handle registered with SetOwner.
func (e *Engine) Owner() any {
	return e.owner
}

// Advance scores userText against the keywords of the current node's
// outgoing edges and moves to the target of the closest one. Ties go to the
// first edge and keyword in authoring order. When there is nothing to score,
// the engine falls back to root. It returns the new current node.
func (e *Engine) Advance(userText string) domain.NodeID {
	e.mustBeInitialized()
	next, _, _ := e.selectNext(userText)
	e.current = next
	return next
}

// Respond draws one answer of the current node uniformly at random.
// A node without answers yields a *domain.NoAnswerError.
func (e *Engine) Respond() (string, error) {
	e.mustBeInitialized()
	node := e.graph.Node(e.current)
	if !node.HasAnswers() {
		return "", &domain.NoAnswerError{Node: node.Name}
	}
	return node.Answers[e.rng.IntN(len(node.Answers))], nil
}

// Reply advances on userText and picks the answer to show.
// When the new node has no answers the reply is still returned, along with
// an error wrapping domain.ErrNoAnswer; the position is updated either way.
func (e *Engine) Reply(ctx context.Context, userText string) (*domain.Reply, error) {
	e.mustBeInitialized()

	from := e.current
	next, best, scored := e.selectNext(userText)
	e.current = next

	reply := &domain.Reply{Node: e.graph.Name(next)}
	event := &domain.MatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventMatch},
		From:      e.graph.Name(from),
		To:        reply.Node,
	}

	if best == nil {
		reply.Fallback = true
		event.Type = domain.EventFallback
		e.logger.Debug("no candidates, falling back to root", "from", event.From, "root", reply.Node)
		e.emitFallback(ctx, event)
	} else {
		reply.Keyword = best.Keyword
		reply.Cost = best.Cost
		event.Keyword = best.Keyword
		event.Cost = best.Cost
		event.Candidates = scored
		e.logger.Debug("matched", "from", event.From, "to", reply.Node, "keyword", best.Keyword, "cost", best.Cost)
		e.emitMatch(ctx, event)
	}

	return e.respondAt(ctx, reply)
}

// Greet answers at the current node without moving, as when a conversation starts.
func (e *Engine) Greet(ctx context.Context) (*domain.Reply, error) {
	e.mustBeInitialized()
	return e.respondAt(ctx, &domain.Reply{Node: e.graph.Name(e.current)})
}

func (e *Engine) respondAt(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	e.emitNodeEnter(ctx)

	answer, err := e.Respond()
	if err != nil {
		e.logger.Warn("node has no answers", "node", reply.Node)
		e.emitNoAnswer(ctx)
		return reply, err
	}
	reply.Answer = answer
	return reply, nil
}

func (e *Engine) mustBeInitialized() {
	if e == nil || e.graph == nil || !e.graph.Has(e.current) || !e.graph.Has(e.root) {
		panic("runtime: engine used before initialization (no graph or root)")
	}
}
