package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/zestyzy/CampusStudyHub/domain"
)

// Cache wraps a Collection with a Redis-backed read-through snapshot so that
// repeated dashboard reads and multiple open windows share one source of
// truth instead of diverging in-memory copies. Writes go through to disk and
// evict the snapshot.
type Cache[T domain.Record] struct {
	base  *Collection[T]
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache[T domain.Record](base *Collection[T], client *redis.Client, ttl time.Duration) *Cache[T] {
	if base == nil {
		panic("storage.NewCache: base collection is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache[T]{base: base, redis: client, ttl: ttl}
}

// Name returns the underlying collection name.
func (c *Cache[T]) Name() string { return c.base.Name() }

// Exists reports whether the underlying collection file has been created yet.
func (c *Cache[T]) Exists() bool { return c.base.Exists() }

func (c *Cache[T]) Load(ctx context.Context) ([]T, error) {
	if records, ok := c.loadFromCache(ctx); ok {
		return records, nil
	}

	records, err := c.base.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.storeSnapshot(ctx, records)
	return records, nil
}

func (c *Cache[T]) Save(ctx context.Context, records []T) error {
	if err := c.base.Save(ctx, records); err != nil {
		return err
	}

	c.evict(ctx)
	return nil
}

func (c *Cache[T]) loadFromCache(ctx context.Context) ([]T, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.cacheKey()).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to disk without failing the read.
			_ = c.redis.Del(ctx, c.cacheKey()).Err()
		}
		return nil, false
	}
	var records []T
	if err := sonic.Unmarshal(data, &records); err != nil {
		_ = c.redis.Del(ctx, c.cacheKey()).Err()
		return nil, false
	}
	return records, true
}

func (c *Cache[T]) storeSnapshot(ctx context.Context, records []T) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(records)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, c.cacheKey(), data, c.ttl).Err()
}

func (c *Cache[T]) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, c.cacheKey()).Result()
}

func (c *Cache[T]) cacheKey() string {
	return "collection:" + c.base.Name()
}
