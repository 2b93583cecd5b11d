package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "meditrack:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds locks as Redis keys with a per-acquisition token.
type RedisLocker struct {
	client        *redis.Client
	wait          time.Duration
	retryInterval time.Duration
}

// NewRedisLocker builds a locker that waits up to wait for a held key.
func NewRedisLocker(client *redis.Client, wait time.Duration) *RedisLocker {
	if wait < 0 {
		wait = 0
	}
	return &RedisLocker{
		client:        client,
		wait:          wait,
		retryInterval: 50 * time.Millisecond,
	}
}

// Acquire sets key with NX and a PX expiry, retrying until the wait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	fullKey := redisKeyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(fullKey, token), nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

func (l *RedisLocker) releaser(fullKey, token string) ReleaseFunc {
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release lock %s: %w", fullKey, err)
		}
		return nil
	}
}
