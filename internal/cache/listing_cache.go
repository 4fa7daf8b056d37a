// Package cache holds the public listing search cache: an in-process ccache
// layer in front of an optional shared Redis layer.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/karlseguin/ccache/v3"
)

const generationKey = "listings:generation"

type ListingCache struct {
	local *ccache.Cache[[]byte]
	redis *redis.Client
	ttl   time.Duration

	mu  sync.Mutex
	gen uint64
}

// Generation identifies the cache contents between two invalidations.
type Generation struct {
	local  uint64
	shared int64
}

// NewListingCache builds the cache. redisClient may be nil.
func NewListingCache(maxItems int64, ttl time.Duration, redisClient *redis.Client) *ListingCache {
	return &ListingCache{
		local: ccache.New(ccache.Configure[[]byte]().MaxSize(maxItems)),
		redis: redisClient,
		ttl:   ttl,
	}
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// Generation returns the current generation. Take it before computing a
// value and store the value with SetAt.
func (c *ListingCache) Generation(ctx context.Context) Generation {
	c.mu.Lock()
	g := Generation{local: c.gen}
	c.mu.Unlock()
	if c.redis != nil {
		g.shared = c.sharedGeneration(ctx)
	}
	return g
}

// Get looks in the local layer first, then Redis. A Redis hit is copied
// into the local layer.
func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if item := c.local.Get(key); item != nil && !item.Expired() {
		return item.Value(), true
	}
	if c.redis == nil {
		return nil, false
	}

	gen := c.Generation(ctx)
	data, err := c.redis.Get(ctx, redisKey(gen.shared, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("listing cache redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	c.setLocal(gen, key, data)
	return data, true
}

func (c *ListingCache) Set(ctx context.Context, key string, data []byte) {
	c.SetAt(ctx, c.Generation(ctx), key, data)
}

// SetAt stores data computed under gen. It reports false and stores nothing
// when an invalidation happened since gen was taken.
func (c *ListingCache) SetAt(ctx context.Context, gen Generation, key string, data []byte) bool {
	if !c.setLocal(gen, key, data) {
		return false
	}
	if c.redis == nil {
		return true
	}
	// A stale shared generation writes to an orphaned key.
	if err := c.redis.Set(ctx, redisKey(gen.shared, key), data, c.ttl).Err(); err != nil {
		slog.Warn("listing cache redis set failed", "key", key, "error", err)
	}
	return true
}

func (c *ListingCache) setLocal(gen Generation, key string, data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen.local {
		return false
	}
	c.local.Set(key, data, c.ttl)
	return true
}

// InvalidateAll drops every cached search. Redis entries are orphaned by
// bumping the generation counter and expire on their own.
func (c *ListingCache) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	c.local.Clear()
	c.mu.Unlock()
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("listing cache invalidation failed", "error", err)
	}
}

func (c *ListingCache) ItemCount() int {
	return c.local.ItemCount()
}

// Status reports "memory", "redis" or "redis unhealthy: ...".
func (c *ListingCache) Status(ctx context.Context) string {
	if c.redis == nil {
		return "memory"
	}
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return "redis unhealthy: " + err.Error()
	}
	return "redis"
}

func (c *ListingCache) Close() error {
	c.local.Stop()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

func (c *ListingCache) sharedGeneration(ctx context.Context) int64 {
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if err != nil {
		return 0
	}
	return gen
}

func redisKey(gen int64, key string) string {
	return "listings:" + strconv.FormatInt(gen, 10) + ":" + key
}
