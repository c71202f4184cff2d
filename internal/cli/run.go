package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
)

// RunOptions configures an interactive conversation.
type RunOptions struct {
	SessionID string
	Watch     bool
	JSON      bool
	Fresh     bool

	Input  io.Reader
	Output io.Writer
}

// Run holds one conversation over opts.Input and opts.Output. A named
// session is persisted (in the session directory unless Redis or another
// directory is configured) and resumed by the next Run with the same name.
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.State, error) {
	open := OpenStores
	if opts.SessionID != "" {
		open = OpenPersistentStores
	}
	stores, err := open(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	defer stores.Close()

	if opts.Fresh && opts.SessionID != "" {
		if err := stores.Store.Delete(ctx, opts.SessionID); err != nil {
			return nil, fmt.Errorf("failed to reset session %s: %w", opts.SessionID, err)
		}
		a.Logger.Info("session reset", "session_id", opts.SessionID)
	}

	if opts.Watch {
		a.watch(ctx)
	}

	headless := !runner.IsTerminal(opts.Input)
	runOpts := []runner.Option{
		runner.WithLogger(a.Logger),
		runner.WithHeadless(headless),
		runner.WithStore(stores.Store),
		runner.WithMaxInputSize(a.Config.MaxInputSize),
	}
	if stores.Locker != nil {
		runOpts = append(runOpts, runner.WithLocker(stores.Locker))
	}

	switch {
	case opts.JSON:
		jsonHandler := runner.NewJSONHandler(opts.Input, opts.Output)
		jsonHandler.Sanitize = runner.LimitSanitizer(a.Config.MaxInputSize)
		runOpts = append(runOpts, runner.WithInputHandler(jsonHandler))
	case !headless:
		renderer, err := tui.NewRenderer(0)
		if err != nil {
			a.Logger.Warn("markdown rendering disabled", "err", err)
		} else {
			runOpts = append(runOpts, runner.WithRenderer(renderer))
		}
		runOpts = append(runOpts, runner.WithBanner(tui.Banner(a.Engine.Name)))
	}

	r := runner.NewRunner(runOpts...)
	r.Input = opts.Input
	r.Output = opts.Output

	state, err := r.Run(ctx, a.Engine, opts.SessionID)
	if err != nil && errors.Is(err, context.Canceled) {
		return state, nil
	}
	return state, err
}

// watch reloads the graph in the background until ctx is done.
func (a *App) watch(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		if err := a.Engine.WatchAndReload(ctx); err != nil {
			a.Logger.Warn("hot reload disabled", "err", err)
		}
		return nil
	})
}
