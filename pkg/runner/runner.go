package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
)

// Runner drives one conversation from an IOHandler.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input and
	// Output is created.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for resumable sessions.
	// If nil, sessions are ephemeral.
	Store  ports.StateStore
	Locker ports.DistributedLocker

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
	Banner   string

	// Sanitize cleans user lines read by the default TextHandler.
	// If nil, SanitizeInput is used.
	Sanitize SanitizeFunc
}

// NewRunner creates a new Runner with default Stdin/Stdout.
// It is headless when stdin is not a terminal.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:    os.Stdin,
		Output:   os.Stdout,
		Headless: !IsTerminal(os.Stdin),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run holds a conversation until the user types "exit" or "quit", the input
// ends or ctx is cancelled. A stored session with sessionID is resumed;
// otherwise a new one starts at root and its greeting is shown. An empty
// sessionID starts an anonymous session. It returns the last state.
func (r *Runner) Run(ctx context.Context, engine ports.StatelessEngine, sessionID string) (*domain.State, error) {
	handler := r.resolveHandler()
	mgr := r.newManager(engine)

	if sessionID == "" {
		sessionID = session.NewID()
	}

	state, err := r.begin(ctx, mgr, handler, sessionID)
	if err != nil {
		return nil, err
	}

	for {
		text, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("input closed", "session_id", sessionID, "err", err)
				return state, nil
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(text)) {
		case "exit", "quit":
			return state, nil
		}

		next, reply, err := mgr.Chat(ctx, sessionID, text)
		if err != nil && !errors.Is(err, domain.ErrNoAnswer) {
			return state, fmt.Errorf("navigation error: %w", err)
		}
		state = next

		if err := r.present(ctx, handler, reply, err); err != nil {
			return state, err
		}
	}
}

func (r *Runner) newManager(engine ports.StatelessEngine) *session.Manager {
	store := r.Store
	if store == nil {
		store = memory.NewStore()
	}
	opts := []session.Option{session.WithLogger(r.Logger)}
	if r.Locker != nil {
		opts = append(opts, session.WithLocker(r.Locker))
	}
	return session.NewManager(engine, store, opts...)
}

func (r *Runner) begin(ctx context.Context, mgr *session.Manager, handler IOHandler, sessionID string) (*domain.State, error) {
	state, err := mgr.Load(ctx, sessionID)
	if err == nil {
		r.Logger.Debug("session resumed", "session_id", sessionID, "node", state.CurrentNode)
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s at %q.", sessionID, state.CurrentNode)); err != nil {
			return nil, fmt.Errorf("output error: %w", err)
		}
		return state, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	state, greeting, err := mgr.Start(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrNoAnswer) {
		return nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	if err := r.present(ctx, handler, greeting, err); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *Runner) present(ctx context.Context, handler IOHandler, reply *domain.Reply, navErr error) error {
	var err error
	if errors.Is(navErr, domain.ErrNoAnswer) {
		err = handler.SystemOutput(ctx, fmt.Sprintf("%s (%s)", domain.ErrNoAnswer, reply.Node))
	} else {
		err = handler.Present(ctx, reply)
	}
	if err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	opts := []TextHandlerOption{
		WithTextHandlerRenderer(r.Renderer),
		WithSanitizer(r.Sanitize),
	}
	if r.Headless {
		opts = append(opts, WithPrompt(""))
	}
	th := NewTextHandler(r.Input, r.Output, opts...)
	if !r.Headless && r.Banner != "" && r.Output != nil {
		fmt.Fprintln(r.Output, r.Banner)
	}
	// Memoize so a second Run reuses the same input pump.
	r.Handler = th
	return th
}
