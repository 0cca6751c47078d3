// Package cache stores encoded merge results keyed by a hash of their inputs.
//
// Four backends implement [Cache]:
//
//   - [FileCache]: one JSON entry file per key, for CLI usage
//   - [MemoryCache]: an expiring LRU inside the process, for the HTTP server
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: never stores anything
//
// Keys come from a [Keyer] so that callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLMerge is how long merge results stay cached unless configured otherwise.
const TTLMerge = 24 * time.Hour

// Backend names reported to observability hooks.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// BackendName returns the backend name of c.
func BackendName(c Cache) string {
	switch c.(type) {
	case *FileCache:
		return BackendFile
	case *MemoryCache:
		return BackendMemory
	case *RedisCache:
		return BackendRedis
	case *NullCache, nil:
		return BackendNone
	default:
		return "custom"
	}
}
