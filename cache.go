package rishiwrites

import (
	"sync"
	"time"
)

// ThumbCache is an in-memory cache of encoded thumbnails with TTL.
type ThumbCache struct {
	mu      sync.RWMutex
	entries map[string]thumbEntry
	ttl     time.Duration
	now     func() time.Time
}

type thumbEntry struct {
	data    []byte
	fetched time.Time
}

// NewThumbCache creates a ThumbCache whose entries expire after ttl.
func NewThumbCache(ttl time.Duration) *ThumbCache {
	return &ThumbCache{
		entries: make(map[string]thumbEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *ThumbCache) valid(e thumbEntry) bool {
	return c.now().Sub(e.fetched) < c.ttl
}

// Get returns the cached bytes for key if present and fresh.
func (c *ThumbCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.valid(e) {
		return nil, false
	}
	return e.data, true
}

// Put stores data under key.
func (c *ThumbCache) Put(key string, data []byte) {
	c.mu.Lock()
	c.entries[key] = thumbEntry{data: data, fetched: c.now()}
	c.mu.Unlock()
}

// GetOrLoad returns the cached bytes for key, calling load on a miss. It
// tries a read lock first; only takes a write lock if a load is needed, and
// concurrent misses for one key share a single load.
func (c *ThumbCache) GetOrLoad(key string, load func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && c.valid(e) {
		return e.data, nil
	}
	data, err := load()
	if err != nil {
		return nil, err
	}
	c.entries[key] = thumbEntry{data: data, fetched: c.now()}
	return data, nil
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ThumbCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]thumbEntry)
	c.mu.Unlock()
}

// Len returns the number of entries, fresh or not.
func (c *ThumbCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
