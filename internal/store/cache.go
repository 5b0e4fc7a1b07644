package store

import (
	"sync"
	"time"
)

// cacheEntry is a cached value together with its expiry deadline.
type cacheEntry struct {
	value   any
	expires time.Time
}

// cache is a minimal keyed TTL cache.
//
// It exists to short-circuit upstream round trips: a non-forced refresh
// that finds a live entry skips the network entirely. Every local mutation
// invalidates the cache so reads after a write always see fresh upstream
// state on the next refresh.
type cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

// get returns the value stored under key if it has not expired.
func (c *cache) get(key string, now time.Time) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || now.After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

// set stores value under key for ttl. A non-positive ttl disables caching
// for this key entirely.
func (c *cache) set(key string, value any, ttl time.Duration, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return
	}
	c.entries[key] = cacheEntry{value: value, expires: now.Add(ttl)}
}

// invalidate drops every entry.
func (c *cache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}
