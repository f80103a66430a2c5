package search

import (
	"sync"
	"time"
)

// ttlCache is a minimal expiring key-value store for search results.
// Entries are evicted lazily on read; the working set is bounded by the
// number of distinct queries in one session, so no sweeper is needed.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	results []Result
	expires time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ttlCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

func (c *ttlCache) set(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		results: results,
		expires: time.Now().Add(c.ttl),
	}
}
