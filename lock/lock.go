// Package lock defines the distributed lock capability used by lrucache.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrTaken is matched (errors.Is) by every acquisition failure caused by
// another owner holding the key.
var ErrTaken = errors.New("lock: already held")

// Locker acquires exclusive, expiring leases on keys. The retry policy
// belongs to the implementation: a single-attempt Locker serves TryLock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock. Release is called at most once by lrucache.
type Lease interface {
	Release(ctx context.Context) error
}
