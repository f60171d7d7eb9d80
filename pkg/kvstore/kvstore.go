// Package kvstore abstracts the ephemeral per-key counters the API needs
// (rate limits, short-lived tracking). Production uses the Redis
// implementation; the in-process store serves single-instance runs and tests.
package kvstore

import "context"

// Store is a minimal TTL-aware key-value interface.
type Store interface {
	// Get returns the value for key, or "" and false when absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key with a TTL in seconds (0 = no expiry).
	Set(ctx context.Context, key, value string, ttlSeconds int) error
	// Incr atomically increments the integer at key and returns the new
	// value. A missing key starts at 0. TTL is applied only when the key is
	// created by this call.
	Incr(ctx context.Context, key string, ttlSeconds int) (int64, error)
	// Expire resets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttlSeconds int) error
	// Delete removes a key.
	Delete(ctx context.Context, key string) error
}
