package services

import (
	"sync"
	"time"
)

// ResolveCache is a time-bounded cache of resolved channel identifiers keyed
// by normalized number. The clock is injected so expiry is testable without
// real-time sleeps.
type ResolveCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]resolveEntry
}

type resolveEntry struct {
	address   string
	expiresAt time.Time
}

// NewResolveCache creates a cache with the given TTL. A nil clock defaults to
// time.Now.
func NewResolveCache(ttl time.Duration, now func() time.Time) *ResolveCache {
	if now == nil {
		now = time.Now
	}
	return &ResolveCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]resolveEntry),
	}
}

// Get returns the cached address for a number, if present and unexpired.
// Expired entries are dropped on access.
func (c *ResolveCache) Get(number string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[number]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, number)
		return "", false
	}
	return entry.address, true
}

// Put stores a resolved address for a number
func (c *ResolveCache) Put(number, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[number] = resolveEntry{
		address:   address,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Forget removes a number from the cache, forcing re-resolution. The executor
// calls this before the second retry tier.
func (c *ResolveCache) Forget(number string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, number)
}

// Len returns the number of live entries (expired ones included until touched)
func (c *ResolveCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
