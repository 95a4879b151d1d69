package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore shares rate-limit windows across replicas. The
// window lives as a counter with a TTL: the first INCR opens it, EXPIRE
// pins its end, and the key vanishing resets the count.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{
		rdb:    rdb,
		prefix: "ratelimit",
	}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	rkey := s.prefix + ":" + key

	count, err := s.rdb.Incr(ctx, rkey).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		err = s.rdb.Expire(ctx, rkey, window).Err()

		if err != nil {
			return 0, 0, err
		}

		return 1, window, nil
	}

	ttl, err := s.rdb.PTTL(ctx, rkey).Result()

	if err != nil || ttl < 0 {
		// key lost its TTL somehow; re-arm rather than leak a counter
		_ = s.rdb.Expire(ctx, rkey, window).Err()
		ttl = window
	}

	return int(count), ttl, nil
}
