// Package blob abstracts the object storage backing catalogs and photos.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists for the key.
var ErrNotFound = errors.New("object not found")

// Store is a key/value object store. Put overwrites the whole object.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error

	// List returns all keys starting with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}
