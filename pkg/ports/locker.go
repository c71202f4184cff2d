package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises turns of one conversation across replicas
// sharing a StateStore. Keys are session ids.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock lapses after
	// ttl if the holder never unlocks.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
