package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveCacheHitWithinTTL(t *testing.T) {
	current := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cache := NewResolveCache(10*time.Minute, func() time.Time { return current })

	cache.Put("212612345678", "212612345678@c.us")

	current = current.Add(9 * time.Minute)
	addr, ok := cache.Get("212612345678")
	assert.True(t, ok)
	assert.Equal(t, "212612345678@c.us", addr)
}

func TestResolveCacheExpires(t *testing.T) {
	current := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cache := NewResolveCache(10*time.Minute, func() time.Time { return current })

	cache.Put("212612345678", "212612345678@c.us")
	assert.Equal(t, 1, cache.Len())

	current = current.Add(11 * time.Minute)
	_, ok := cache.Get("212612345678")
	assert.False(t, ok)
	// Expired entries are dropped on access.
	assert.Equal(t, 0, cache.Len())
}

func TestResolveCacheForget(t *testing.T) {
	cache := NewResolveCache(10*time.Minute, nil)

	cache.Put("212612345678", "212612345678@c.us")
	cache.Forget("212612345678")

	_, ok := cache.Get("212612345678")
	assert.False(t, ok)
}

func TestResolveCachePutOverwrites(t *testing.T) {
	cache := NewResolveCache(10*time.Minute, nil)

	cache.Put("212612345678", "old@c.us")
	cache.Put("212612345678", "new@c.us")

	addr, ok := cache.Get("212612345678")
	assert.True(t, ok)
	assert.Equal(t, "new@c.us", addr)
	assert.Equal(t, 1, cache.Len())
}
