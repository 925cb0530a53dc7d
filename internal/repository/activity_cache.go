package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Catalog kinds kept in the activity cache.
const (
	CacheKindActivity = "activity"
	CacheKindProvider = "provider"
)

const activityCachePrefix = "tourism:catalog:"

// ActivityCache caches encoded catalog entries by kind and id.
type ActivityCache interface {
	// GetMany returns the cached payloads for the ids it holds.
	GetMany(ctx context.Context, kind string, ids []string) (map[string][]byte, error)
	SetMany(ctx context.Context, kind string, values map[string][]byte) error
	Delete(ctx context.Context, kind, id string) error
}

// RedisActivityCache stores catalog entries as plain string keys with a TTL.
type RedisActivityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisActivityCache creates the cache. A nil client yields a cache that never hits.
func NewRedisActivityCache(client *redis.Client, ttl time.Duration) *RedisActivityCache {
	return &RedisActivityCache{client: client, ttl: ttl}
}

func cacheKey(kind, id string) string {
	return activityCachePrefix + kind + ":" + id
}

func (c *RedisActivityCache) GetMany(ctx context.Context, kind string, ids []string) (map[string][]byte, error) {
	out := map[string][]byte{}
	if c == nil || c.client == nil || len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(kind, id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return out, fmt.Errorf("mget %s cache: %w", kind, err)
	}
	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			continue
		}
		out[ids[i]] = []byte(str)
	}
	return out, nil
}

func (c *RedisActivityCache) SetMany(ctx context.Context, kind string, values map[string][]byte) error {
	if c == nil || c.client == nil || len(values) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, payload := range values {
			pipe.Set(ctx, cacheKey(kind, id), payload, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s cache: %w", kind, err)
	}
	return nil
}

func (c *RedisActivityCache) Delete(ctx context.Context, kind, id string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, cacheKey(kind, id)).Err(); err != nil {
		return fmt.Errorf("invalidate %s cache: %w", kind, err)
	}
	return nil
}
