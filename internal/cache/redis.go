package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Compile-time check that RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)

// RedisCache is a Redis-backed implementation of Cache. Entries carry the
// same JSON envelope as MemoryCache and additionally expire server-side
// via the Redis TTL. Any Redis fault is logged and treated as a miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// RedisOption is a function that configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRedisTTL overrides the entry lifetime.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisClock injects the time source, used by tests to simulate expiry.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(c *RedisCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewRedisCache creates a Redis-backed result cache.
func NewRedisCache(client *redis.Client, logger *slog.Logger, opts ...RedisOption) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &RedisCache{
		client: client,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached analysis for key if it has not expired.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}

	var entry envelope
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("cache entry malformed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	// The Redis TTL normally evicts entries first; the timestamp check
	// keeps the 24h contract when the server TTL was altered externally.
	writtenAt := time.UnixMilli(entry.Timestamp)
	if c.now().Sub(writtenAt) >= c.ttl {
		_ = c.client.Del(ctx, key).Err()
		return "", false
	}

	return entry.Result, true
}

// Put stores result under key, stamping the current time.
func (c *RedisCache) Put(ctx context.Context, key, result string) {
	data, err := json.Marshal(envelope{
		Result:    result,
		Timestamp: c.now().UnixMilli(),
	})
	if err != nil {
		c.logger.Warn("cache entry encode failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
