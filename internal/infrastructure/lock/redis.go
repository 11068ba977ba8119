// Package lock provides per-idea processing flags backed by Redis.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"TripIdeas/internal/ports"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements ports.Locker with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.Locker = (*RedisLocker)(nil)

// NewRedisLocker namespaces keys with prefix.
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "tripideas:lock:"
	}
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire reports ok=false when another holder owns the key. The flag expires
// after ttl even if release is never called.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	full := l.prefix + key

	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", full, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{full}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", full, err)
		}
		return nil
	}
	return release, true, nil
}
