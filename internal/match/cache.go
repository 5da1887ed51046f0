package match

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// scoreCache is a simple in-memory TTL cache for model scoring
// results, keyed on the full prompt so any change to resume, job or
// required skills misses.
type scoreCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	result    Result
	timestamp time.Time
}

func newScoreCache(ttl time.Duration) *scoreCache {
	return &scoreCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a cached result if present and not expired.
func (c *scoreCache) Get(prompt string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[cacheKey(prompt)]
	if !exists {
		return Result{}, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return Result{}, false
	}
	return entry.result, true
}

// Set stores a result against the prompt that produced it.
func (c *scoreCache) Set(prompt string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(prompt)] = &cacheEntry{
		result:    result,
		timestamp: time.Now(),
	}
}

// CleanExpired removes expired entries (call periodically).
func (c *scoreCache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.entries, key)
		}
	}
}

func cacheKey(prompt string) string {
	hash := md5.Sum([]byte(prompt))
	return fmt.Sprintf("%x", hash)
}
