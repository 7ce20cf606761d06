package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("archived file not found")

// ArchiveStore keeps the source exports each import batch was computed from.
type ArchiveStore interface {
	// Put stores content under key and returns the cleaned key
	Put(ctx context.Context, key string, content io.Reader) (string, error)

	// Open retrieves an archived file
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an archived file; a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks whether key is archived
	Exists(ctx context.Context, key string) (bool, error)
}
