package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cooldowns as expiring redis keys. Acquisition is a single
// SET NX with expiry, so it is atomic across every bot process sharing redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps client. A non-empty prefix is prepended to every key as
// "{prefix}:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(namespace, subject string) string {
	if s.prefix == "" {
		return Key(namespace, subject)
	}
	return s.prefix + ":" + Key(namespace, subject)
}

func (s *RedisStore) TryAcquire(ctx context.Context, namespace, subject string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, ErrInvalidWindow
	}
	ok, err := s.client.SetNX(ctx, s.key(namespace, subject), 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("%w: set %s: %v", ErrUnavailable, Key(namespace, subject), err)
	}
	return ok, nil
}

func (s *RedisStore) Remaining(ctx context.Context, namespace, subject string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.key(namespace, subject)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: pttl %s: %v", ErrUnavailable, Key(namespace, subject), err)
	}
	// -2 missing key, -1 no expiry; neither is a running cooldown.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
