package mimekit

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ============================================================================
// Byte-classification result cache
// ============================================================================

// cacheKey identifies a byte stream by the hash of its sniffed header plus
// its total length. Two streams that agree on both classify identically,
// since detection never reads past the sniff budget.
type cacheKey struct {
	sum  uint64
	size int
}

type cacheEntry struct {
	typeID  string
	expires time.Time
}

// resultCache is a small in-memory TTL cache for DetectBytes results.
// It is thread-safe.
type resultCache struct {
	mu         sync.RWMutex
	entries    map[cacheKey]cacheEntry
	ttl        time.Duration
	maxEntries int
	sniff      int

	hits      int64
	misses    int64
	evictions int64
}

// CacheStatistics contains cache performance metrics.
type CacheStatistics struct {
	Hits      int64
	Misses    int64
	Size      int64
	Evictions int64
	HitRate   float64
}

func newResultCache(ttl time.Duration, maxEntries, sniff int) *resultCache {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	return &resultCache{
		entries:    make(map[cacheKey]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		sniff:      sniff,
	}
}

func (c *resultCache) key(data []byte) cacheKey {
	head := data
	if c.sniff > 0 && len(head) > c.sniff {
		head = head[:c.sniff]
	}
	return cacheKey{sum: xxhash.Sum64(head), size: len(data)}
}

func (c *resultCache) get(data []byte) (string, bool) {
	k := c.key(data)

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok || (c.ttl > 0 && time.Now().After(e.expires)) {
		c.mu.Lock()
		if !ok {
			c.misses++
		} else {
			delete(c.entries, k)
			c.misses++
			c.evictions++
		}
		c.mu.Unlock()
		return "", false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.typeID, true
}

func (c *resultCache) put(data []byte, typeID string) {
	k := c.key(data)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evict()
	}
	c.entries[k] = cacheEntry{
		typeID:  typeID,
		expires: time.Now().Add(c.ttl),
	}
}

// evict drops expired entries; if nothing has expired it drops one arbitrary
// entry so the cache never exceeds maxEntries. Caller holds the lock.
func (c *resultCache) evict() {
	now := time.Now()
	dropped := false
	for k, e := range c.entries {
		if c.ttl > 0 && now.After(e.expires) {
			delete(c.entries, k)
			c.evictions++
			dropped = true
		}
	}
	if !dropped {
		for k := range c.entries {
			delete(c.entries, k)
			c.evictions++
			break
		}
	}
}

// stats returns a snapshot of cache performance counters.
func (c *resultCache) stats() CacheStatistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := CacheStatistics{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      int64(len(c.entries)),
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
