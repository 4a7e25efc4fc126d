// Package provider defines the store abstraction used by lrucache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation).
//
// Keys arrive fully prefixed ("physical" keys). Stores never add or strip
// prefixes of their own on data keys, so Keys returns exactly what Set received.
package provider

import (
	"context"
	"time"
)

// Store is a byte store with TTLs, key listing and a health check.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key and reports whether it existed.
	Del(ctx context.Context, key string) (bool, error)

	// Keys lists every key the store currently holds, in one call.
	Keys(ctx context.Context) ([]string, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources. Safe to call more than once.
	Close(ctx context.Context) error
}
