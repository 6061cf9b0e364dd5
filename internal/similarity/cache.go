package similarity

import (
	"container/list"
	"sync"
)

// BoundedCache is a fixed-capacity score cache with least-recently-used
// eviction. Safe for concurrent use.
type BoundedCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key   string
	score float64
}

// NewBoundedCache creates a cache holding at most capacity entries. A
// capacity below 1 falls back to 1024.
func NewBoundedCache(capacity int) *BoundedCache {
	if capacity < 1 {
		capacity = 1024
	}
	return &BoundedCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *BoundedCache) Get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).score, true
}

func (c *BoundedCache) Put(key string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).score = score
		c.order.MoveToFront(elem)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, score: score})
}

// Len reports the number of cached entries.
func (c *BoundedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
