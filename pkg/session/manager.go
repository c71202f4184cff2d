package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs many conversations over one engine, persisting each in a store.
// Calls for the same session are serialized; different sessions run in parallel.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	engine ports.StatelessEngine
	store  ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger

	observersMu sync.RWMutex
	observers   []ChangeFunc
}

// ChangeFunc is notified after a session state has been saved.
// prev is nil for a session that was just started.
type ChangeFunc func(ctx context.Context, sessionID string, prev, next *domain.State)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a session manager driving engine and persisting to store.
func NewManager(engine ports.StatelessEngine, store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		engine:  engine,
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers fn to be called, under the session lock, after every
// saved change.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Manager) notify(ctx context.Context, sessionID string, prev, next *domain.State) {
	m.observersMu.RLock()
	defer m.observersMu.RUnlock()
	for _, fn := range m.observers {
		fn(ctx, sessionID, prev, next)
	}
}

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.NewString()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start begins a new conversation, replacing any stored one with the same ID.
// An empty sessionID is replaced by a generated one.
func (m *Manager) Start(ctx context.Context, sessionID string) (*domain.State, *domain.Reply, error) {
	if sessionID == "" {
		sessionID = NewID()
	}

	var (
		state *domain.State
		reply *domain.Reply
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, reply, err = m.start(ctx, sessionID)
		return err
	})
	return state, reply, err
}

func (m *Manager) start(ctx context.Context, sessionID string) (*domain.State, *domain.Reply, error) {
	state, reply, err := m.engine.Start(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrNoAnswer) {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}
	if saveErr := m.store.Save(ctx, sessionID, state); saveErr != nil {
		return nil, nil, fmt.Errorf("failed to initialize session: %w", saveErr)
	}
	m.logger.Debug("session started", "session_id", sessionID, "node", state.CurrentNode)
	m.notify(ctx, sessionID, nil, state)
	return state, reply, err
}

// Chat feeds one user message into a conversation and persists the result.
// Unknown sessions are started first. A domain.ErrNoAnswer error comes with a
// non-nil state and reply: the move was saved, only the answer is missing.
func (m *Manager) Chat(ctx context.Context, sessionID, text string) (*domain.State, *domain.Reply, error) {
	var (
		next  *domain.State
		reply *domain.Reply
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			state, _, err = m.start(ctx, sessionID)
			if err != nil && !errors.Is(err, domain.ErrNoAnswer) {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		var navErr error
		next, reply, navErr = m.engine.Navigate(ctx, state, text)
		if navErr != nil && !errors.Is(navErr, domain.ErrNoAnswer) {
			return navErr
		}

		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		m.notify(ctx, sessionID, state, next)
		return navErr
	})
	return next, reply, err
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
