package entities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"epiaudit/internal/geography"
	platformredis "epiaudit/internal/platform/redis"
	"epiaudit/pkg/platform/sentinel"
)

// Cache is a read-through Redis cache in front of a reference store. Entity
// lookups repeat heavily within one aggregation run and reference data only
// changes when it is reloaded, so a short TTL is enough.
type Cache struct {
	inner  Store
	redis  *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type CacheOption func(*Cache)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

func NewCache(inner Store, redis *platformredis.Client, ttl time.Duration, opts ...CacheOption) (*Cache, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner store is required")
	}
	if redis == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	c := &Cache{inner: inner, redis: redis, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func cacheKey(level geography.AbstractionLevel, key string) string {
	return fmt.Sprintf("epiaudit:geo:%s:%s", level, key)
}

func (c *Cache) Find(ctx context.Context, level geography.AbstractionLevel, key string) (geography.Entity, error) {
	ck := cacheKey(level, key)

	if raw, err := c.redis.Get(ctx, ck).Bytes(); err == nil {
		var e geography.Entity
		if err := json.Unmarshal(raw, &e); err == nil {
			return e, nil
		}
		// Unreadable payload; fall through to the store and rewrite it.
	}

	e, err := c.inner.Find(ctx, level, key)
	if err != nil {
		return geography.Entity{}, err
	}

	raw, err := json.Marshal(e)
	if err == nil {
		if err := c.redis.Set(ctx, ck, raw, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "geography cache write failed",
				"level", level.String(), "key", key, "error", err)
		}
	}
	return e, nil
}

// List always goes to the store: seeding runs are rare, and caching whole
// levels would hold stale rows long past a reference reload.
func (c *Cache) List(ctx context.Context, level geography.AbstractionLevel) ([]geography.Entity, error) {
	return c.inner.List(ctx, level)
}

// Invalidate drops a cached entity, used after a reference-data reload.
func (c *Cache) Invalidate(ctx context.Context, level geography.AbstractionLevel, key string) error {
	err := c.redis.Del(ctx, cacheKey(level, key)).Err()
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("invalidate geography cache: %w", err)
	}
	return nil
}
