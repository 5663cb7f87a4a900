package geo

import (
	"sync"
	"time"
)

type cacheEntry struct {
	locations []Location
	expires   time.Time
}

// locationCache is a thread-safe in-memory TTL cache for geocoding results.
// Addresses repeat heavily (everyone's commute starts at home), so even a
// short TTL absorbs most provider traffic.
type locationCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newLocationCache(ttl time.Duration) *locationCache {
	return &locationCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *locationCache) get(key string) ([]Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.locations, true
}

func (c *locationCache) put(key string, locations []Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		locations: locations,
		expires:   time.Now().Add(c.ttl),
	}
}
