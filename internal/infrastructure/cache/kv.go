package cache

import (
	"context"
	"time"
)

// KV is a byte-value key-value store with per-key TTL. Session cart
// snapshots live behind this contract so the same storefront code runs
// against Redis in production and an in-memory map in tests.
type KV interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
