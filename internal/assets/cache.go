package assets

import (
	"context"
	"sync"

	"github.com/abhisek/bandwise/internal/prefetch"
)

// MemoryCache is a process-local prefetch.Cache keyed by asset URL.
type MemoryCache struct {
	mu     sync.RWMutex
	assets map[string]prefetch.Asset
	bytes  int64
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{assets: make(map[string]prefetch.Asset)}
}

// OpenMemoryCache returns a prefetch.CacheOpener that hands out c.
func OpenMemoryCache(c *MemoryCache) prefetch.CacheOpener {
	return func(context.Context) (prefetch.Cache, error) {
		return c, nil
	}
}

func (c *MemoryCache) Has(_ context.Context, url string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.assets[url]
	return ok, nil
}

func (c *MemoryCache) Put(_ context.Context, a prefetch.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.assets[a.URL]; ok {
		c.bytes -= int64(len(prev.Body))
	}
	c.assets[a.URL] = a
	c.bytes += int64(len(a.Body))
	return nil
}

func (c *MemoryCache) DeleteAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.assets)
	c.bytes = 0
	return nil
}

// Get returns a resident asset. The session layer reads through this when
// the candidate reaches a block.
func (c *MemoryCache) Get(url string) (prefetch.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[url]
	return a, ok
}

// Len returns the number of resident assets.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// Bytes returns the total size of resident asset bodies.
func (c *MemoryCache) Bytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytes
}
