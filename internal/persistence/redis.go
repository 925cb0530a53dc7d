package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/config"
	"github.com/spec-kit/tourism-service/internal/repository"
)

// Cache states reported by readiness probes.
const (
	CacheDisabled    = "disabled"
	CacheOK          = "ok"
	CacheUnreachable = "unreachable"
)

// Cache holds the optional Redis client behind the catalog cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenCache connects to Redis. An empty address disables caching; an unreachable
// server is only logged since lookups fall through to the document store.
func OpenCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Cache {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; catalog cache disabled")
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	cache := &Cache{client: client, ttl: cfg.ActivityCacheTTL()}

	if status := cache.Status(ctx); status != CacheOK {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Duration("ttl", cache.ttl))
	}
	return cache
}

// ActivityCache returns the catalog cache. It is a no-op when Redis is disabled.
func (c *Cache) ActivityCache() *repository.RedisActivityCache {
	if c == nil {
		return repository.NewRedisActivityCache(nil, 0)
	}
	return repository.NewRedisActivityCache(c.client, c.ttl)
}

// Status reports disabled, ok or unreachable.
func (c *Cache) Status(ctx context.Context) string {
	if c == nil || c.client == nil {
		return CacheDisabled
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return CacheUnreachable
	}
	return CacheOK
}

// Close closes the client.
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		_ = c.client.Close()
	}
}
