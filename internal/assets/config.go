package assets

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Config configures the HTTP asset fetcher.
type Config struct {
	// Timeout bounds a single asset download. Default: 30s.
	Timeout time.Duration
	// MaxBytes caps an asset body; larger bodies are rejected. Default: 50MB.
	MaxBytes int64
	// UserAgent sent with requests.
	UserAgent string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		MaxBytes:  50 * 1024 * 1024,
		UserAgent: "bandwise-prefetch/1.0",
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or unparseable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("BANDWISE_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("BANDWISE_FETCH_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxBytes = n
		}
	}
	if v := os.Getenv("BANDWISE_FETCH_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxBytes <= 0 || c.MaxBytes == math.MaxInt64 {
		return fmt.Errorf("fetch max bytes must be in [1, %d), got %d", int64(math.MaxInt64), c.MaxBytes)
	}
	return nil
}
