// Package memory keeps conversation state in process memory.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

// Store is a ports.StateStore backed by a map. It holds private copies, so
// callers never share a *domain.State with it.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.State
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*domain.State)}
}

func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	snapshot := state.Clone()
	snapshot.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.sessions[sessionID] = snapshot
	s.mu.Unlock()
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	snapshot, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return snapshot.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// List returns the session ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.sessions)), nil
}

// Len reports how many conversations are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
