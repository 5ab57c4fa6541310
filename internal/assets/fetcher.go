// Package assets provides the network and cache capabilities the prefetch
// buffer consumes: an HTTP fetcher for item media and an in-memory cache.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/abhisek/bandwise/internal/prefetch"
)

// ErrTooLarge indicates an asset exceeded Config.MaxBytes.
type ErrTooLarge struct {
	URL   string
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("asset %s exceeds %d bytes", e.URL, e.Limit)
}

// HTTPFetcher downloads assets with GET requests.
type HTTPFetcher struct {
	client *http.Client
	config Config
}

// NewHTTPFetcher creates a fetcher. Zero-valued config fields take defaults.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}
}

// Fetch retrieves url. Any status other than 200 is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (prefetch.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return prefetch.Asset{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return prefetch.Asset{}, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return prefetch.Asset{}, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	// Read one byte past the limit to tell "exactly MaxBytes" from "too large".
	limit := f.config.MaxBytes
	if limit < math.MaxInt64 {
		limit++
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return prefetch.Asset{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return prefetch.Asset{}, &ErrTooLarge{URL: url, Limit: f.config.MaxBytes}
	}

	h := sha256.Sum256(body)
	return prefetch.Asset{
		URL:         url,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Hash:        hex.EncodeToString(h[:]),
	}, nil
}
