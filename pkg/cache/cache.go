// Package cache provides byte-oriented caches with per-entry TTLs.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entry files under a directory, for CLI usage
//   - [RedisCache]: a shared Redis instance, for teams running several clients
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are produced by a [Keyer] so that every component agrees on the key
// layout and tenants (one per OAuth client id) can be isolated with
// [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must treat a missing or expired entry as a miss
// (ok == false, err == nil) rather than an error.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
