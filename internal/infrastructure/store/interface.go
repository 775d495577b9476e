package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no value exists under the key.
var ErrNotFound = errors.New("key not found")

// KV is the durable key-value capability cart snapshots are persisted to.
type KV interface {
	// Save stores data under key, replacing any previous value
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the value under key or ErrNotFound
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}
