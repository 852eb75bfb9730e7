package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates work across service instances. The token
// supplier uses it to serialize per-user refreshes so concurrent
// near-expiry requests converge on a single refresh call.
type DistributedLock interface {
	// Acquire attempts to take a named lock with the given TTL.
	// Returns true if acquired, false if held elsewhere.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release releases a named lock. Safe to call when the lock is not
	// held or has expired.
	Release(ctx context.Context, name string) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
