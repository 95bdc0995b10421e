// Package cache provides the listing cache used by the Nexus client.
//
// Repository catalogs and component pages are cached between runs so that a
// dry-run followed by an export, or a repeated export against a large
// server, does not re-walk thousands of listing pages. Artifact content is
// never cached; only listing responses pass through here.
//
// Three backends implement the [Cache] interface:
//   - [FileCache]: hashed JSON entries on disk (default for CLI usage)
//   - [RedisCache]: shared cache for operators running exports from
//     several hosts
//   - [NullCache]: caching disabled
//
// Entries carry a per-entry TTL; expired entries read as misses and are
// removed lazily.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for listing-cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and fresh; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 stores the entry
	// without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry and reports how many were removed.
	Clear(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the listing-cache lifetime used when the configuration does
// not specify one. Listings go stale as artifacts are published, so the
// default is short.
const DefaultTTL = 15 * time.Minute
