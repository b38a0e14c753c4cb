package dispatcher

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
)

// RedisJobLocker implements Locker on top of Redis, so jobs sharing a dedup
// key execute exclusively even across dispatcher instances.
type RedisJobLocker struct {
	client       *redislock.Client
	retryBackoff time.Duration
}

type redisJobLock struct {
	lock *redislock.Lock
}

func NewRedisJobLocker(client redis.UniversalClient) *RedisJobLocker {
	return &RedisJobLocker{
		client:       redislock.New(client),
		retryBackoff: 2 * time.Second,
	}
}

func (r *RedisJobLocker) WithRetryBackoff(backoff time.Duration) *RedisJobLocker {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}

	r.retryBackoff = backoff

	return r
}

func (r *RedisJobLocker) Obtain(ctx context.Context, key string, ttl time.Duration, maxWait time.Duration) (Lock, error) {
	var retryStrategy redislock.RetryStrategy

	// If maxWait is zero or less than the retry backoff, we do not retry.
	// We try to obtain the lock once and fail immediately if it is not available.
	// Otherwise, we retry until we reach the maxWait duration or the lock is obtained.
	if maxWait <= 0 || maxWait < r.retryBackoff {
		retryStrategy = redislock.NoRetry()
	} else {
		maxRetryAttempts := int(maxWait / r.retryBackoff)
		retryStrategy = redislock.LimitRetry(redislock.LinearBackoff(r.retryBackoff), maxRetryAttempts)
	}

	opts := &redislock.Options{
		RetryStrategy: retryStrategy,
	}

	lock, err := r.client.Obtain(ctx, key, ttl, opts)
	if err != nil {
		if err == redislock.ErrNotObtained {
			return nil, ErrLockUnavailable
		}
		return nil, err
	}

	return &redisJobLock{lock: lock}, nil
}

func (l *redisJobLock) Release(ctx context.Context) error {
	if l.lock == nil {
		return nil
	}

	if err := l.lock.Release(ctx); err != nil && err != redislock.ErrLockNotHeld {
		return err
	}

	l.lock = nil

	return nil
}
