package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine moves every conversation to "next".
type stubEngine struct{}

func (stubEngine) Start(ctx context.Context, sessionID string) (*domain.State, *domain.Reply, error) {
	return domain.NewState(sessionID, "root"), &domain.Reply{Node: "root", Answer: "hi"}, nil
}

func (stubEngine) Navigate(ctx context.Context, state *domain.State, text string) (*domain.State, *domain.Reply, error) {
	next := state.Clone()
	next.CurrentNode = "next"
	next.Turns++
	return next, &domain.Reply{Node: "next", Answer: text}, nil
}

func (stubEngine) Inspect() *graph.Graph { return nil }

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(stubEngine{}, &MockStore{})
	ctx := context.Background()
	count := 10000

	// 1. Create and Delete many sessions
	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _, _ = mgr.Chat(ctx, sid, "hello")
		_ = mgr.Delete(ctx, sid)
	}

	// 2. Every lock entry must be released once its session is idle.
	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

type recordingLocker struct {
	locked   []string
	unlocked int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, key)
	return func(context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(stubEngine{}, &MockStore{}, WithLocker(locker), WithLockTTL(time.Second))

	_, _, err := mgr.Chat(context.Background(), "s1", "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
	assert.Equal(t, time.Second, mgr.lockTTL)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	boom := errors.New("boom")
	mgr := NewManager(stubEngine{}, &MockStore{}, WithLocker(&recordingLocker{err: boom}))

	_, _, err := mgr.Chat(context.Background(), "s1", "hello")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mgr.locks)
}
