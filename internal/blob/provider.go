// Package blob defines the raw byte storage abstraction.
package blob

import "io"

// Store is the interface for blob operations. Keys are flat, opaque file
// names derived at ingestion time; callers never choose them directly.
type Store interface {
	// Write stores the content read from r under key and returns the number
	// of bytes written. Missing storage locations are created lazily.
	Write(key string, r io.Reader) (int64, error)
	// Open returns a reader over the blob stored under key.
	Open(key string) (io.ReadCloser, error)
	// Read returns the full content of the blob stored under key.
	Read(key string) ([]byte, error)
	// Delete removes the blob stored under key.
	Delete(key string) error
	// Rename moves a blob from oldKey to newKey.
	Rename(oldKey, newKey string) error
	// List returns every key currently present in the store.
	List() ([]string, error)
}
