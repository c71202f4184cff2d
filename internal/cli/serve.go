package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/lifecycle"
	httpAdapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/adapters/mcp"
	"github.com/aretw0/parley/pkg/observability"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
var ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP API server.
type ServeOptions struct {
	Addr  string
	Watch bool

	// Ready, if set, is called with the bound address once listening.
	Ready func(net.Addr)
}

// Serve runs the HTTP API until ctx is done.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	stores, err := OpenStores(ctx, a.Config)
	if err != nil {
		return err
	}
	defer stores.Close()

	handler, err := httpAdapter.NewHandler(a.Engine, stores.Manager(a.Engine, a.Logger),
		httpAdapter.WithLogger(a.Logger),
		httpAdapter.WithMetricsHandler(observability.Handler(a.Registry)),
		httpAdapter.WithMaxInputSize(a.Config.MaxInputSize),
	)
	if err != nil {
		return err
	}

	if opts.Watch {
		a.watch(ctx)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		a.Logger.Info("parley server listening", "addr", ln.Addr().String(), "graph", a.Config.Graph, "store", stores.Kind)
		serverErrors <- srv.Serve(ln)
		return nil
	})
	if opts.Ready != nil {
		opts.Ready(ln.Addr())
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		a.Logger.Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		return nil
	}
}

// Transports supported by ServeMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP runs the MCP server on the given transport until ctx is done or,
// for stdio, until the client disconnects.
func (a *App) ServeMCP(ctx context.Context, transport, addr string) error {
	stores, err := OpenStores(ctx, a.Config)
	if err != nil {
		return err
	}
	defer stores.Close()

	srv := mcp.NewServer(a.Engine, stores.Manager(a.Engine, a.Logger), mcp.WithLogger(a.Logger),
		mcp.WithMaxInputSize(a.Config.MaxInputSize),
	)

	switch transport {
	case TransportStdio:
		a.Logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		err := srv.ServeSSE(ctx, addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE)
	}
}
