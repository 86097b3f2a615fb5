package driven

import (
	"context"
	"time"
)

// CacheStore is a TTL key/value cache.
// Lookups never fail loudly: a read or decode problem is a miss.
type CacheStore interface {
	// Get decodes the value stored at key into dst.
	// Returns false if the key is missing, expired, or unreadable.
	Get(ctx context.Context, key string, dst any) bool

	// Put stores value at key with the given TTL, replacing any
	// existing entry. ExpiresAt is reset on every call.
	Put(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Purge removes expired entries and returns how many were removed.
	Purge(ctx context.Context) (int, error)
}
