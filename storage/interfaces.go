package storage

import "context"

// KVStore is a durable key-value store.
// Implementations must be thread-safe and support concurrent access.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan calls fn for every key starting with prefix, in key order.
	// Iteration stops at the first error returned by fn.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error

	// Close releases the underlying storage.
	Close() error
}
