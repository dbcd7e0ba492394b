// Package cache stores pipeline results between runs.
//
// A [Cache] maps string keys to opaque byte slices with an optional TTL.
// Backends:
//
//   - [FileCache]: one file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (caching disabled)
//
// Keys are produced by a [Keyer] so every backend sees the same layout:
// "analysis:" followed by the SHA-256 of the document hash and the options
// that affect the result.
//
// [ScopedKeyer] prefixes keys to keep tenants apart on a shared backend.
package cache

import (
	"context"
	"errors"
	"time"
)

// TTLAnalysis is how long analysis results are kept. Results are keyed by
// document content, so they never go stale; the TTL only bounds disk use.
const TTLAnalysis = 7 * 24 * time.Hour

// ErrEmptyKey is returned by Set when key is empty.
var ErrEmptyKey = errors.New("cache key must not be empty")

// Cache is a byte-oriented key/value store with expiry.
//
// Get returns (nil, false, nil) on a miss; an error means the backend failed,
// which callers treat like a miss. A zero ttl stores without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
