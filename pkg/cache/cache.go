// Package cache stores laid-out workflow results so repeated layouts of an
// unchanged document skip the layout pipeline.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under the XDG cache directory
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// # Keys
//
// Keys are produced by a [Keyer] from the SHA-256 of the document bytes
// ([Hash]) and every option that influences the result, so changing any
// layout option misses the cache instead of returning a stale result.
// [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// TTLLayout is how long laid-out results are kept by default.
const TTLLayout = 24 * time.Hour

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
