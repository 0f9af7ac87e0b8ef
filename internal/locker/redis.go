package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every replica that talks to the same Redis server.
// A held lock expires after ttl so a crashed holder cannot block a staff member forever.
type RedisLocker struct {
	client     *redis.Client
	log        *slog.Logger
	prefix     string
	ttl        time.Duration
	retryEvery time.Duration
}

// NewRedisLocker creates a Redis backed locker. Keys are stored as prefix + key.
func NewRedisLocker(log *slog.Logger, client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:     client,
		log:        log,
		prefix:     prefix,
		ttl:        ttl,
		retryEvery: 25 * time.Millisecond,
	}
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, nil
}

// Lock polls Redis until the key is set by this caller or ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := r.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retryEvery)
	defer ticker.Stop()

	for {
		acquired, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to set lock %s: %w", redisKey, errors.Join(ErrNotAcquired, err))
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil {
				r.log.ErrorContext(releaseCtx, "Failed to release lock", "key", redisKey, "error", err)
			}
		})
	}, nil
}

// Ping reports whether the Redis server is reachable.
func (r *RedisLocker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
