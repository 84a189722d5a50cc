// Package storage provides access to the object store Bedrock writes its
// output to, and to the local directory finished videos are served from.
// It defines the Storage interface (port) for hexagonal architecture and
// an S3 implementation backed by a LocalStorage output directory.
package storage

import (
	"context"
	"time"
)

// Object describes an object in the remote store.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage defines the operations the job service needs from the object store.
type Storage interface {
	// ListObjects returns every object whose key starts with prefix.
	ListObjects(ctx context.Context, prefix string) ([]Object, error)

	// Download copies the object at key into the local output directory
	// under name and returns the local path.
	Download(ctx context.Context, key, name string) (path string, err error)

	// DeleteObjects removes the given keys from the store.
	DeleteObjects(ctx context.Context, keys []string) error
}
