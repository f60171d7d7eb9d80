package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on a shared Redis instance.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps a go-redis client as a Store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func ttl(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key, value string, ttlSeconds int) error {
	return r.client.Set(ctx, key, value, ttl(ttlSeconds)).Err()
}

// Incr implements Store. The TTL is attached only on first increment so a
// fixed window does not slide.
func (r *Redis) Incr(ctx context.Context, key string, ttlSeconds int) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && ttlSeconds > 0 {
		_ = r.client.Expire(ctx, key, ttl(ttlSeconds)).Err()
	}
	return n, nil
}

// Expire implements Store.
func (r *Redis) Expire(ctx context.Context, key string, ttlSeconds int) error {
	return r.client.Expire(ctx, key, ttl(ttlSeconds)).Err()
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
