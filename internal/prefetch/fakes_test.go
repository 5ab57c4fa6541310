package prefetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// memCache is an in-memory Cache that can be told to fail.
type memCache struct {
	mu      sync.Mutex
	assets  map[string]Asset
	putErr  error
	deletes int
}

func newMemCache() *memCache {
	return &memCache{assets: make(map[string]Asset)}
}

func (c *memCache) Has(_ context.Context, url string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.assets[url]
	return ok, nil
}

func (c *memCache) Put(_ context.Context, a Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.assets[a.URL] = a
	return nil
}

func (c *memCache) DeleteAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = make(map[string]Asset)
	c.deletes++
	return nil
}

func (c *memCache) has(url string) bool {
	ok, _ := c.Has(context.Background(), url)
	return ok
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.assets)
}

func openerFor(c Cache) CacheOpener {
	return func(context.Context) (Cache, error) { return c, nil }
}

// countingFetcher records fetches per URL. If gate is non-nil every fetch
// blocks on it; if honorCtx is set a cancelled context unblocks the fetch.
type countingFetcher struct {
	mu       sync.Mutex
	counts   map[string]int
	total    atomic.Int64
	delay    time.Duration
	fail     map[string]bool
	gate     chan struct{}
	entered  chan string
	honorCtx bool
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{counts: make(map[string]int), fail: make(map[string]bool)}
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (Asset, error) {
	f.mu.Lock()
	f.counts[url]++
	f.mu.Unlock()
	f.total.Add(1)

	if f.entered != nil {
		f.entered <- url
	}
	if f.gate != nil {
		if f.honorCtx {
			select {
			case <-f.gate:
			case <-ctx.Done():
				return Asset{}, ctx.Err()
			}
		} else {
			<-f.gate
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[url] {
		return Asset{}, errors.New("connection reset")
	}
	return Asset{URL: url, Body: []byte("media:" + url)}, nil
}

func (f *countingFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[url]
}

func (f *countingFetcher) maxPerURL() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := 0
	for _, n := range f.counts {
		m = max(m, n)
	}
	return m
}

// ctxCache is a memCache whose writes fail once their context is done,
// like a cache backed by a network store.
type ctxCache struct {
	*memCache
}

func (c ctxCache) Put(ctx context.Context, a Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.memCache.Put(ctx, a)
}

func (c ctxCache) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.memCache.DeleteAll(ctx)
}
