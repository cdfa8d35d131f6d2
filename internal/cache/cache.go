// Package cache provides an in-memory cache with LRU eviction and per-entry
// TTL, used for synthesized audio and provider voice lists.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
)

// Common errors for cache operations.
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")
)

// Stats holds cache performance metrics.
type Stats struct {
	Capacity  int64 // maximum capacity in bytes
	Size      int64 // current size in bytes
	ItemCount int   // number of items in cache
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is an in-memory byte cache with LRU eviction and an optional TTL.
// A zero TTL disables expiry.
type Cache struct {
	capacity int64
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	size     int64
	items    map[string]*list.Element
	eviction *list.List // front = most recently used

	stats Stats
}

// entry is one cached value with its insertion time.
type entry struct {
	key      string
	value    []byte
	size     int64
	storedAt time.Time
}

// New creates a cache bounded to capacity bytes with the given TTL.
func New(capacity int64, ttl time.Duration) *Cache {
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get retrieves a value, treating expired entries as misses.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	e := elem.Value.(*entry)
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		c.removeLocked(elem)
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return e.value, true
}

// Put stores a value, evicting least-recently-used entries as needed.
func (c *Cache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueSize := int64(len(value))
	if valueSize > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		c.size += valueSize - e.size
		e.value = value
		e.size = valueSize
		e.storedAt = c.now()
		c.eviction.MoveToFront(elem)
		c.stats.Size = c.size
		return nil
	}

	for c.size+valueSize > c.capacity && c.eviction.Len() > 0 {
		c.removeLocked(c.eviction.Back())
		c.stats.Evictions++
	}

	elem := c.eviction.PushFront(&entry{
		key:      key,
		value:    value,
		size:     valueSize,
		storedAt: c.now(),
	})
	c.items[key] = elem
	c.size += valueSize
	c.stats.Size = c.size
	return nil
}

// Delete removes an entry if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeLocked(elem)
	}
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache metrics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.ItemCount = len(c.items)
	s.Size = c.size
	return s
}

// removeLocked removes an element; caller holds c.mu.
func (c *Cache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	c.eviction.Remove(elem)
	delete(c.items, e.key)
	c.size -= e.size
	c.stats.Size = c.size
}

// SetClock overrides the cache's time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Key builds a stable cache key from its parts.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
