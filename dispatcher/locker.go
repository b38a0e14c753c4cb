package dispatcher

import (
	"context"
	"errors"
	"time"
)

// ErrLockUnavailable is returned when an execution lock cannot be obtained.
var ErrLockUnavailable = errors.New("lock unavailable")

// Locker serializes execution of jobs sharing a dedup key.
// A distributed implementation extends the guarantee across instances.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, maxWait time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

// NoopLocker hands out locks unconditionally. Suitable for single-instance
// deployments where the pool itself provides the only concurrency.
type NoopLocker struct{}

func (l *NoopLocker) Obtain(ctx context.Context, key string, ttl time.Duration, maxWait time.Duration) (Lock, error) {
	return &noopLock{}, nil
}

type noopLock struct{}

func (l *noopLock) Release(ctx context.Context) error { return nil }
