package memory

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyEmpty    = errors.New("key cannot be empty")
)

// Memory is a durable key-value store. The task list keeps its whole
// sequence under a single key, but backends stay general so other
// values (settings, exports) can live next to it.
type Memory interface {
	// Store overwrites the value held under key
	Store(ctx context.Context, key string, value []byte) error

	// Retrieve returns the value held under key or ErrKeyNotFound
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// List returns all keys with optional prefix filtering
	List(ctx context.Context, prefix string) ([]string, error)

	// Close flushes and releases the underlying medium
	Close() error
}
