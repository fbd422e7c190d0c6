package llmresolver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores resolved (or rejected) LLM resolutions keyed by a
// normalized exchange title, so repeat titles within or across passes
// skip the external call entirely (§4.4 tier 4, §4.11).
type Cache interface {
	Get(ctx context.Context, key string) (*Resolution, bool)
	Set(ctx context.Context, key string, res *Resolution, ttl time.Duration)
}

// cachedEntry wraps a Resolution so a confirmed-null rejection can also be
// cached (Resolution == nil means "previously rejected", not "cache miss").
type cachedEntry struct {
	Resolution *Resolution
	Rejected   bool
}

// RedisCache persists resolutions in Redis so the cache survives across
// passes, grounded on the writer.Set/Get pattern used for game-day caches.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
}

// NewRedisCache builds a Redis-backed resolution cache.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger, prefix: "llmresolver:resolution:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Resolution, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("llmresolver: redis cache get failed", zap.Error(err))
		return nil, false
	}

	var entry cachedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("llmresolver: redis cache entry corrupt", zap.Error(err))
		return nil, false
	}
	if entry.Rejected {
		return nil, true
	}
	return entry.Resolution, true
}

func (c *RedisCache) Set(ctx context.Context, key string, res *Resolution, ttl time.Duration) {
	entry := cachedEntry{Resolution: res, Rejected: res == nil}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("llmresolver: failed to marshal cache entry", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.logger.Warn("llmresolver: redis cache set failed", zap.Error(err))
	}
}

// MapCache is an in-process bounded TTL cache, used when REDIS_URL is
// unset (§4.11 degradation: the resolver tier still works, it just loses
// cross-pass memory when the process restarts).
type MapCache struct {
	mu       sync.Mutex
	entries  map[string]mapCacheEntry
	maxSize  int
}

type mapCacheEntry struct {
	entry     cachedEntry
	expiresAt time.Time
}

// NewMapCache builds an in-process cache bounded to maxSize entries;
// once full, Set first drops every expired entry and, if the cache is
// still full, one arbitrary entry before writing. Get drops only the
// expired entry it looks up.
func NewMapCache(maxSize int) *MapCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MapCache{entries: make(map[string]mapCacheEntry), maxSize: maxSize}
}

func (c *MapCache) Get(ctx context.Context, key string) (*Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	if e.entry.Rejected {
		return nil, true
	}
	return e.entry.Resolution, true
}

func (c *MapCache) Set(ctx context.Context, key string, res *Resolution, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictExpiredLocked()
	}
	c.entries[key] = mapCacheEntry{
		entry:     cachedEntry{Resolution: res, Rejected: res == nil},
		expiresAt: time.Now().Add(ttl),
	}
}

// evictExpiredLocked drops expired entries; if none are expired and the
// cache is still full, one arbitrary entry (the first in map iteration
// order, not necessarily the oldest) is dropped to bound memory.
func (c *MapCache) evictExpiredLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
}
