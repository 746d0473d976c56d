// Package cache stores short-lived server-side tickets (recovery state,
// captcha codes, attempt counters). Values are JSON-encoded.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value store with an atomic counter
type Store interface {
	// Get decodes the value under key into dst. It reports false when the key is absent or expired.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Replace overwrites the value under key only if key is live. It reports
	// false, without storing anything, when the key is absent or expired.
	Replace(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the counter under key and returns the new value.
	// A new counter expires after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
