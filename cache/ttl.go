package cache

import (
	"sync"
	"time"
)

// cacheEntry represents a cached item with its timestamp
type cacheEntry[V any] struct {
	Data      V
	Timestamp time.Time
}

// ttlCache is a map of entries that expire ttl after they were stored.
// A zero or negative ttl disables caching.
type ttlCache[V any] struct {
	mutex sync.RWMutex
	items map[string]cacheEntry[V]
	ttl   time.Duration
	now   func() time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{
		items: make(map[string]cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// get returns the entry and its age when present and not expired
func (c *ttlCache[V]) get(key string) (V, time.Duration, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, 0, false
	}

	c.mutex.RLock()
	entry, found := c.items[key]
	c.mutex.RUnlock()

	if !found {
		return zero, 0, false
	}
	age := c.now().Sub(entry.Timestamp)
	if age >= c.ttl {
		c.mutex.Lock()
		if cur, ok := c.items[key]; ok && cur.Timestamp.Equal(entry.Timestamp) {
			delete(c.items, key)
		}
		c.mutex.Unlock()
		return zero, 0, false
	}
	return entry.Data, age, true
}

func (c *ttlCache[V]) put(key string, v V) {
	if c.ttl <= 0 {
		return
	}
	c.mutex.Lock()
	c.items[key] = cacheEntry[V]{Data: v, Timestamp: c.now()}
	c.mutex.Unlock()
}
