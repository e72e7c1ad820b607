package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of go-redis used by RedisCache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache stores the sorted plan list as one JSON value.
type RedisCache struct {
	client redisClient
	key    string
	ttl    time.Duration
}

// NewRedisCache panics on a nil client or empty key. A zero ttl keeps the
// value until the next invalidation.
func NewRedisCache(client redisClient, key string, ttl time.Duration) *RedisCache {
	if client == nil {
		panic("catalog: redis client is required")
	}
	if key == "" {
		panic("catalog: redis cache key is required")
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]Plan, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var plans []Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, errors.Join(ErrCacheMiss, err)
	}
	return plans, nil
}

func (c *RedisCache) Set(ctx context.Context, plans []Plan) error {
	raw, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
