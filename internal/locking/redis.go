package locking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL = 30 * time.Second
	retryInterval  = 50 * time.Millisecond
)

// RedisLocker is a Locker shared by every process that talks to the same Redis.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker builds a RedisLocker on rdb. Keys are stored as prefix+key.
func NewRedisLocker(rdb redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		prefix: prefix,
		ttl:    defaultLockTTL,
	}
}

// Lock retries until the lock is obtained or ctx is done.
// The lock expires after its TTL if the holder never releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + key
	lock, err := l.client.Obtain(ctx, lockKey, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryInterval),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", lockKey, ErrNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", lockKey, err)
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			slog.Warn("Failed to release lock", "key", lockKey, "error", err)
		}
	}, nil
}
