// Package prefetch warms a content cache with the assets of every candidate
// next-stage block before routing decides which one the candidate gets.
//
// A Buffer belongs to exactly one test session. Prefetch work runs in the
// background and never reports errors to the caller; Clear evicts everything
// the session buffered and must run when the session ends.
package prefetch

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNoCache is returned by a CacheOpener when the host has no cache capability.
var ErrNoCache = errors.New("prefetch: no cache capability")

// Asset is a fetched piece of item media, addressed by URL.
type Asset struct {
	URL         string
	Body        []byte
	ContentType string
	Hash        string // hex SHA-256 of Body
}

// Cache is the host content cache. Implementations must be safe for
// concurrent use.
type Cache interface {
	Has(ctx context.Context, url string) (bool, error)
	Put(ctx context.Context, asset Asset) error
	DeleteAll(ctx context.Context) error
}

// Fetcher retrieves an asset over the network.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Asset, error)
}

// CacheOpener detects and opens the host cache. It is called at most once
// per Buffer; an error disables prefetching for the Buffer's lifetime.
type CacheOpener func(ctx context.Context) (Cache, error)

// Set groups the assets of one candidate block.
type Set struct {
	Track     string
	AssetURLs []string
}

// Config tunes a Buffer.
type Config struct {
	// Concurrency bounds simultaneous fetches per Prefetch call. Default: 4.
	Concurrency int

	// Logger receives capability, failure and discard events.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Concurrency: 4}
}

func (c *Config) defaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats counts buffer activity since construction.
type Stats struct {
	Fetched   int64 // assets fetched and offered to the cache
	Hits      int64 // URLs already resident when checked
	Failures  int64 // membership, fetch or insert failures
	Discarded int64 // fetches that completed after a Clear
	Available bool  // false once capability detection has failed
}
