// Package cache stores solved packings on disk so that repeating a solve with
// the same rectangles, paddings, mode and solver settings returns at once.
package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// appName names the cache directory.
const appName = "circlepack"

// DefaultTTL is how long a cached result stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// ErrNoCacheDir is returned when no home or XDG cache directory is available.
var ErrNoCacheDir = errors.New("no cache directory available")

// Cache is a byte store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Dir returns the cache directory following the XDG convention
// (~/.cache/circlepack/).
func Dir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoCacheDir
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Open returns a file cache in the default directory, or a NullCache when
// disabled or when no directory can be used.
func Open(disabled bool) Cache {
	if disabled {
		return NewNullCache()
	}
	dir, err := Dir()
	if err != nil {
		return NewNullCache()
	}
	c, err := NewFileCache(dir)
	if err != nil {
		return NewNullCache()
	}
	return c
}
