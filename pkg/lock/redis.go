package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "reservations:lock:"

// releaseScript deletes the key only if it still carries our token, so an
// expired-and-reacquired lock is never removed by its previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	return acquireWithRetry(ctx, l.wait, func(ctx context.Context) (Lease, bool, error) {
		token := uuid.NewString()
		ok, err := l.client.SetNX(ctx, redisKeyPrefix+key, token, l.ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("failed to acquire slot lock %s: %w", key, err)
		}
		if !ok {
			return nil, true, nil
		}
		return &redisLease{client: l.client, key: key, token: token}, false, nil
	})
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

func (r *redisLease) Key() string {
	return r.key
}

func (r *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, r.client, []string{redisKeyPrefix + r.key}, r.token).Err(); err != nil {
		return fmt.Errorf("failed to release slot lock %s: %w", r.key, err)
	}
	return nil
}
