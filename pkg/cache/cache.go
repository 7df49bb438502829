// Package cache stores upstream responses between runs.
//
// Harvested records and image dimensions rarely change, so repeated runs can
// skip most network calls. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry below a directory (default)
//   - [RedisCache]: a shared Redis instance, for several machines
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// Use [Open] to pick a backend from [Options].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// Disabled returns a [NullCache].
	Disabled bool

	// RedisURL selects the Redis backend when set, e.g. redis://localhost:6379/0.
	RedisURL string

	// Dir is the directory of the file backend.
	Dir string
}

// Open returns the backend described by opts.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch {
	case opts.Disabled:
		return NewNullCache(), nil
	case opts.RedisURL != "":
		c, err := NewRedisCache(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
