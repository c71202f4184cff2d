// Package cli wires configuration, logging, metrics, storage and the engine
// together for the parley commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNoGraph is returned when no graph path was configured.
var ErrNoGraph = errors.New("no graph given (use --graph, PARLEY_GRAPH or the config file)")

// App bundles what every command needs.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Engine   *parley.Engine
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level, format), nil
}

// NewApp loads the graph named by cfg and prepares logging and metrics.
// Logs go to logOut.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	if cfg.Graph == "" {
		return nil, ErrNoGraph
	}

	logger, err := NewLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	opts := []parley.Option{
		parley.WithLogger(logger),
		parley.WithLifecycleHooks(observability.Chain(
			observability.LoggingHooks(logger),
			metrics.Hooks(),
		)),
	}
	if cfg.Seed != nil {
		opts = append(opts, parley.WithSeed(*cfg.Seed))
	}

	engine, err := parley.Open(ctx, cfg.Graph, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	logger.Debug("graph loaded", "graph", cfg.Graph, "nodes", engine.Inspect().Len())

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Engine:   engine,
	}, nil
}

// Stores is the session persistence selected by the configuration.
type Stores struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	Kind   string
	closer io.Closer
}

// OpenStores picks Redis when an address is configured, then a session
// directory, then memory. A Redis server is pinged before use.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.Redis.Addr != "" {
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return nil, err
		}
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = redisAdapter.DefaultPrefix
		}
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(prefix),
			redisAdapter.WithTTL(ttl),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return &Stores{
			Store:  store,
			Locker: redisAdapter.NewLocker(store.Client(), prefix),
			Kind:   "redis",
			closer: store,
		}, nil
	}

	if cfg.SessionDir != "" {
		return &Stores{Store: file.New(cfg.SessionDir), Kind: "file"}, nil
	}
	return &Stores{Store: memory.NewStore(), Kind: "memory"}, nil
}

// OpenPersistentStores is OpenStores with the session directory defaulting
// to file.DefaultDir, for commands that must outlive the process.
func OpenPersistentStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.Redis.Addr == "" && cfg.SessionDir == "" {
		withDir := *cfg
		withDir.SessionDir = file.DefaultDir
		cfg = &withDir
	}
	return OpenStores(ctx, cfg)
}

// Close releases the backing connection, if any.
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Manager builds a session manager over the stores.
func (s *Stores) Manager(engine ports.StatelessEngine, logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if s.Locker != nil {
		opts = append(opts, session.WithLocker(s.Locker))
	}
	return session.NewManager(engine, s.Store, opts...)
}
