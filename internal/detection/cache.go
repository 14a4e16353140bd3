package detection

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"
	"time"
)

// Cache defaults matching the demo configuration. The TTL tracks the
// expected gesture-hold duration.
const (
	DefaultCacheTTL      = 2 * time.Second
	DefaultCacheCapacity = 50
)

// HashCrop returns the cache key for a re-encoded crop: a content digest of
// the crop bytes, so the cache is robust to camera noise outside the hand
// region.
func HashCrop(cropJPEG []byte) string {
	sum := md5.Sum(cropJPEG)
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	result    Result
	createdAt time.Time
}

// Cache is a bounded, time-expiring store of detection results keyed by
// crop content hash. All operations are serialized by an internal mutex;
// the cache is shared across concurrent requests.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	capacity   int
	evictBatch int
	entries    map[string]cacheEntry
	now        func() time.Time
}

// NewCache creates a Cache with the given TTL and capacity. Zero values use
// the defaults. When an insertion would exceed capacity, the oldest fifth
// of the entries is evicted in one pass, amortizing eviction cost.
func NewCache(ttl time.Duration, capacity int) *Cache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if capacity == 0 {
		capacity = DefaultCacheCapacity
	}
	batch := capacity / 5
	if batch < 1 {
		batch = 1
	}
	return &Cache{
		ttl:        ttl,
		capacity:   capacity,
		evictBatch: batch,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// Get returns the cached result for key if present and not expired.
// Expired entries are removed on access.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		delete(c.entries, key)
		return Result{}, false
	}
	return entry.result, true
}

// Put stores a result snapshot under key, evicting the oldest entries in
// bulk when the cache is at capacity.
func (c *Cache) Put(key string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{result: result, createdAt: c.now()}
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all cached entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// evictOldestLocked removes the evictBatch oldest entries by insertion
// time. Caller must hold c.mu.
func (c *Cache) evictOldestLocked() {
	type keyed struct {
		key string
		at  time.Time
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{key: k, at: e.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	n := c.evictBatch
	if n > len(all) {
		n = len(all)
	}
	for _, e := range all[:n] {
		delete(c.entries, e.key)
	}
}
