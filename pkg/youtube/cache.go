package youtube

import (
	"container/list"
	"sync"
	"time"
)

// resultCache is a bounded TTL cache for API results. When full, the oldest
// entry is evicted first; eviction order is an explicit policy, not a side
// effect of map iteration.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]*cacheEntry
	order   *list.List
}

type cacheEntry struct {
	videos   []Video
	storedAt time.Time
	element  *list.Element
}

func newResultCache(ttl time.Duration, maxSize int) *resultCache {
	return &resultCache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
	}
}

func (c *resultCache) get(key string) ([]Video, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Since(entry.storedAt) > c.ttl {
		c.order.Remove(entry.element)
		delete(c.entries, key)
		return nil, false
	}

	return entry.videos, true
}

func (c *resultCache) put(key string, videos []Video) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.order.Remove(existing.element)
		delete(c.entries, key)
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(string))
	}

	entry := &cacheEntry{videos: videos, storedAt: time.Now()}
	entry.element = c.order.PushFront(key)
	c.entries[key] = entry
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
