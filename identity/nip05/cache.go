package nip05

import (
	"time"

	"github.com/sasha-s/go-deadlock"
	"nostrid/engine/library"
)

// DefaultTTL applies to positive and negative entries alike.
const DefaultTTL = time.Minute * 5

// Cache memoizes identifier lookups. A nil result is a cached negative lookup
// and ages out on the same TTL as a positive one. Two in-flight lookups for
// the same identifier may both fetch and both store, last write wins.
type Cache struct {
	mutex     *deadlock.Mutex
	entries   map[string]cacheEntry
	ttl       time.Duration
	hits      int64
	misses    int64
	evictions int64
}

type cacheEntry struct {
	result   *library.Identifier
	storedAt time.Time
}

type CacheStats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		mutex:   &deadlock.Mutex{},
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *Cache) get(identifier string) (*library.Identifier, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	entry, ok := c.entries[identifier]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, identifier)
		c.evictions++
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.result, true
}

func (c *Cache) put(identifier string, result *library.Identifier) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[identifier] = cacheEntry{result: result, storedAt: time.Now()}
}

func (c *Cache) Evict(identifier string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.entries[identifier]; ok {
		delete(c.entries, identifier)
		c.evictions++
	}
}

func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.evictions += int64(len(c.entries))
	c.entries = make(map[string]cacheEntry)
}

func (c *Cache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
