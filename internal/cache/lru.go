package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRUColumnCache implements a byte-capacity bounded LRU ColumnCache.
type LRUColumnCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   Key
	value []float64
}

// NewLRUColumnCache creates a new LRU cache with the given capacity in bytes.
func NewLRUColumnCache(capacity int64) *LRUColumnCache {
	return &LRUColumnCache{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a cached column.
func (c *LRUColumnCache) Get(key Key) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a column.
func (c *LRUColumnCache) Set(key Key, col []float64) {
	itemSize := int64(len(col)) * 8

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		oldSize := int64(len(ent.Value.(*entry).value)) * 8
		c.size += itemSize - oldSize
		ent.Value.(*entry).value = col
		c.evict()
		return
	}

	// A column larger than the whole cache is never admitted.
	if itemSize > c.capacity {
		return
	}

	ent := c.evictList.PushFront(&entry{key: key, value: col})
	c.items[key] = ent
	c.size += itemSize
	c.evict()
}

// Invalidate removes entries matching the predicate.
func (c *LRUColumnCache) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, ent := range c.items {
		if predicate(key) {
			c.removeElement(ent)
		}
	}
}

// Stats returns hit/miss counters.
func (c *LRUColumnCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached columns.
func (c *LRUColumnCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUColumnCache) evict() {
	for c.size > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			return
		}
		c.removeElement(ent)
	}
}

func (c *LRUColumnCache) removeElement(ent *list.Element) {
	e := ent.Value.(*entry)
	c.evictList.Remove(ent)
	delete(c.items, e.key)
	c.size -= int64(len(e.value)) * 8
}
