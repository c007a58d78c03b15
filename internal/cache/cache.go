// Package cache provides a short-lived response cache for upstream API data.
// Supports both in-memory and Redis backends for multi-instance deployments.
package cache

import "time"

// DefaultTTL applies when Set is called with a non-positive TTL.
const DefaultTTL = 10 * time.Minute

// DefaultSweepInterval is how often expired entries are physically evicted.
const DefaultSweepInterval = 2 * time.Minute

// Stats holds cache counters. Hits and Misses are cumulative across the
// process lifetime and survive Clear; Keys is the current resident count.
type Stats struct {
	Keys   int    `json:"keys"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Store is a key-value cache with per-entry TTL and a privileged stale-read
// path. Values are opaque byte slices; callers JSON-encode their records.
// Implementations must be safe for concurrent use. Set never surfaces an
// error: a cache write failure must not break the primary fetch path.
type Store interface {
	// Get returns the value only while the entry is unexpired.
	// An expired entry behaves as a miss.
	Get(key string) ([]byte, bool)

	// GetStale returns the value even after expiry, as long as the sweep
	// has not yet evicted the entry. Used only by the stale-fallback
	// recovery path. Stale reads do not count toward hit/miss stats.
	GetStale(key string) ([]byte, bool)

	// Set stores value under key with the given TTL, overwriting any
	// existing entry and resetting its expiry. A non-positive ttl applies
	// the store's default.
	Set(key string, value []byte, ttl time.Duration)

	// Has reports whether an unexpired entry exists for key.
	Has(key string) bool

	// Delete removes the entry, reporting whether one was resident.
	Delete(key string) bool

	// Invalidate removes every resident key containing the substring
	// pattern. An empty pattern is a no-op.
	Invalidate(pattern string)

	// Clear removes all entries unconditionally.
	Clear()

	// ExpiryTime returns the absolute expiry of key, or the zero time when
	// the key is absent or has no TTL.
	ExpiryTime(key string) time.Time

	// Stats returns current cache counters.
	Stats() Stats

	// Close releases resources and stops any background work.
	Close() error
}
