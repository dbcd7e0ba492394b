package cache

import (
	"context"
	"time"
)

// NullCache is the backend for --no-cache and cache.backend = "none": every
// lookup misses and writes are dropped. Set still rejects an empty key, so
// a Keyer bug surfaces whether or not caching is enabled.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache returns a cache that stores nothing.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(_ context.Context, key string, _ []byte, _ time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }
