package prefetch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Buffer deduplicates and runs background asset prefetches for one session.
//
// Every Clear starts a new generation: work dispatched before it is
// cancelled, and any fetch that still completes is discarded instead of
// being inserted, so nothing buffered before Clear survives it.
type Buffer struct {
	open    CacheOpener
	fetcher Fetcher
	cfg     Config

	detect      sync.Once
	cache       Cache
	unavailable atomic.Bool

	flights singleflight.Group

	mu     sync.RWMutex
	parent context.Context
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	jobs   *sync.WaitGroup
	closed bool

	fetched   atomic.Int64
	hits      atomic.Int64
	failures  atomic.Int64
	discarded atomic.Int64
}

// New creates a Buffer. Cancelling ctx abandons all outstanding work.
// The cache capability is detected lazily on first use. A nil fetcher
// disables prefetching the same way a missing cache does.
func New(ctx context.Context, open CacheOpener, fetcher Fetcher, cfg Config) *Buffer {
	cfg.defaults()
	if fetcher == nil {
		open = nil
	}
	b := &Buffer{
		open:    open,
		fetcher: fetcher,
		cfg:     cfg,
		parent:  ctx,
		jobs:    &sync.WaitGroup{},
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	return b
}

// Prefetch schedules every URL in sets for warming and returns immediately.
// URLs already cached, or already being fetched, are not fetched again.
// Failures are logged and otherwise ignored.
func (b *Buffer) Prefetch(sets ...Set) {
	if b.unavailable.Load() {
		return
	}
	urls := distinctURLs(sets)
	if len(urls) == 0 {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	gen, ctx, jobs := b.gen, b.ctx, b.jobs
	jobs.Add(1)
	b.mu.Unlock()

	go func() {
		defer jobs.Done()
		b.run(ctx, gen, urls)
	}()
}

func (b *Buffer) run(ctx context.Context, gen uint64, urls []string) {
	cache := b.cacheFor(ctx)
	if cache == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(b.cfg.Concurrency)
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			b.warm(ctx, cache, gen, url)
			return nil
		})
	}
	_ = g.Wait()
}

// warm makes url resident. The membership check runs inside the flight so
// that a caller arriving just after another finished sees the insert.
func (b *Buffer) warm(ctx context.Context, cache Cache, gen uint64, url string) {
	if ctx.Err() != nil {
		return
	}
	key := strconv.FormatUint(gen, 10) + "|" + url
	_, _, _ = b.flights.Do(key, func() (any, error) {
		err := b.load(ctx, cache, gen, url)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			b.cfg.Logger.Debug("prefetch: cancelled", "url", url)
		default:
			b.failures.Add(1)
			b.cfg.Logger.Warn("prefetch: asset not warmed", "url", url, "error", err)
		}
		return nil, err
	})
}

func (b *Buffer) load(ctx context.Context, cache Cache, gen uint64, url string) error {
	ok, err := cache.Has(ctx, url)
	if err != nil {
		return fmt.Errorf("check cache: %w", err)
	}
	if ok {
		b.hits.Add(1)
		return nil
	}

	asset, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if asset.URL == "" {
		asset.URL = url
	}
	b.fetched.Add(1)
	return b.insert(ctx, cache, gen, asset)
}

// insert stores asset unless a Clear has happened since it was requested.
// Holding the read lock across Put keeps Clear from bumping the generation
// mid-insert.
func (b *Buffer) insert(ctx context.Context, cache Cache, gen uint64, asset Asset) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.gen != gen {
		b.discarded.Add(1)
		b.cfg.Logger.Debug("prefetch: discarded stale asset", "url", asset.URL)
		return nil
	}
	if err := cache.Put(ctx, asset); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// cacheFor detects the cache capability once. A nil result means prefetching
// is disabled for this Buffer.
func (b *Buffer) cacheFor(ctx context.Context) Cache {
	b.detect.Do(func() {
		var (
			c   Cache
			err = ErrNoCache
		)
		if b.open != nil {
			c, err = b.open(context.WithoutCancel(ctx))
		}
		if err == nil && c == nil {
			err = ErrNoCache
		}
		if err != nil {
			b.unavailable.Store(true)
			b.cfg.Logger.Warn("prefetch: cache unavailable, prefetching disabled", "error", err)
			return
		}
		b.cache = c
	})
	return b.cache
}

// Clear evicts every buffered asset. In-flight work is cancelled and joined
// until ctx expires; fetches that complete later are discarded. The eviction
// itself ignores ctx cancellation. Clear is idempotent and never fails:
// errors are logged.
func (b *Buffer) Clear(ctx context.Context) {
	b.mu.Lock()
	b.gen++
	b.cancel()
	old := b.jobs
	b.jobs = &sync.WaitGroup{}
	b.ctx, b.cancel = context.WithCancel(b.parent)
	if b.closed {
		b.cancel()
	}
	b.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		old.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		b.cfg.Logger.Warn("prefetch: clear did not wait for in-flight work", "error", ctx.Err())
	}

	// Eviction runs even when ctx is already done: a cancelled teardown or an
	// exhausted wait bound must not leave assets resident.
	evict := context.WithoutCancel(ctx)
	cache := b.cacheFor(evict)
	if cache == nil {
		return
	}
	if err := cache.DeleteAll(evict); err != nil {
		b.failures.Add(1)
		b.cfg.Logger.Warn("prefetch: clear failed", "error", err)
	}
}

// Close clears the buffer and rejects further Prefetch calls.
func (b *Buffer) Close(ctx context.Context) {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.Clear(ctx)
}

// Wait blocks until work dispatched in the current generation has finished.
// It must not be called concurrently with Prefetch.
func (b *Buffer) Wait() {
	b.mu.RLock()
	jobs := b.jobs
	b.mu.RUnlock()
	jobs.Wait()
}

// Stats returns a snapshot of the buffer's counters.
func (b *Buffer) Stats() Stats {
	return Stats{
		Fetched:   b.fetched.Load(),
		Hits:      b.hits.Load(),
		Failures:  b.failures.Load(),
		Discarded: b.discarded.Load(),
		Available: !b.unavailable.Load(),
	}
}

// distinctURLs flattens sets in order, dropping blanks and repeats.
func distinctURLs(sets []Set) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, s := range sets {
		for _, u := range s.AssetURLs {
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}
