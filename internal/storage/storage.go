// Package storage defines the object-storage contract used by the gateway
// and the backends that implement it. Swap backends by changing
// GATEWAY_STORAGE_DRIVER; the HTTP layer only sees the Store interface.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Metadata is what the gateway records alongside an object's bytes.
type Metadata struct {
	ContentType string
}

// Object is a stored object opened for reading. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string // empty when none was recorded
	Size        int64  // -1 when unknown
}

// Store is the object-storage collaborator.
type Store interface {
	// Put writes body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, meta Metadata) error
	// Get opens the object stored under key or returns ErrNotFound.
	Get(ctx context.Context, key string) (*Object, error)
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by backends holding resources such as a DB pool.
type Closer interface {
	Close() error
}
