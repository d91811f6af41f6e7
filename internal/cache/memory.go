package cache

import (
	"context"
	"sync"
	"time"
)

// Compile-time check that MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)

// MemoryCache is an in-memory implementation of Cache.
// It uses a map with RWMutex for thread-safe access. Suitable for a single
// process; swap for RedisCache when results must survive restarts.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]envelope
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption is a function that configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, used by tests to simulate expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates a new in-memory result cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]envelope),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached analysis for key if it has not expired.
// Expired entries are removed on access.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	writtenAt := time.UnixMilli(entry.Timestamp)
	if c.now().Sub(writtenAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}

	return entry.Result, true
}

// Put stores result under key, stamping the current time.
func (c *MemoryCache) Put(_ context.Context, key, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = envelope{
		Result:    result,
		Timestamp: c.now().UnixMilli(),
	}
}
