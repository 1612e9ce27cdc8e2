package storage

import (
	"context"
	"io"
)

// ObjectStore keeps the content of shared files.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}
