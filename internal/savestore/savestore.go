// Package savestore abstracts the persistence backend as a keyed blob
// store: one opaque save payload per key. Backends exist for memory
// (tests, dev), bbolt (default file store) and sqlite.
package savestore

import "context"

// Store is the blob persistence contract the snapshot manager saves
// through. Get returns ErrNotFound when the key has no payload.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
