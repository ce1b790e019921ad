package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local TTL cache for small string lookups
// (translations, signed URLs).
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) GetString(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if val, found := c.cache.Get(key); found {
		s, ok := val.(string)
		return s, ok
	}
	return "", false
}

// SetString stores value under key. A zero ttl uses the cache default.
func (c *MemoryCache) SetString(key, value string, ttl time.Duration) {
	if c == nil {
		return
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}

func (c *MemoryCache) Delete(key string) {
	if c == nil {
		return
	}
	c.cache.Delete(key)
}

func (c *MemoryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}
