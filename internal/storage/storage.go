// Package storage keeps the uploaded listing photos in an object
// store. A single provider is selected at startup; everything above
// this package only ever sees opaque object keys.
package storage

import (
	"context"
	"io"
)

// Backend is implemented by each object storage provider.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Store is the provider-agnostic handle the rest of the app holds.
type Store struct {
	backend Backend
}

// New wraps the given backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// EnsureBucket creates the photo bucket if it does not exist yet.
// The server calls this once during startup.
func (s *Store) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put stores a photo under the given key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens the stored photo for reading. The caller closes it.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a stored photo.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}
