package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a bookmark or label does not exist
var ErrNotFound = errors.New("not found")

// KV is the key/value backend conversation state is kept in
type KV interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetMany writes all entries together
	SetMany(ctx context.Context, entries map[string][]byte) error

	// Delete removes keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error

	// Close releases the backend
	Close() error
}
