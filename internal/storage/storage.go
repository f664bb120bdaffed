// Package storage contains the object store adapter for S3-compatible
// backends. It owns no business semantics, only bytes: registries layered on
// top interpret keys and metadata.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Adapter-level error taxonomy. Callers match with errors.Is; only these
// three kinds escape the adapter.
var (
	// ErrNotFound means the requested key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrUnavailable is a transient backend fault; the caller may retry.
	ErrUnavailable = errors.New("object storage unavailable")
	// ErrDenied is an authorization failure and is never retried.
	ErrDenied = errors.New("object storage access denied")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Methods use context and streaming readers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info, including user metadata, without the content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every object under the prefix in a single pass over the
	// current snapshot. No consistency is guaranteed across concurrent
	// mutation, and the listing is not restartable.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the
	// object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// GetBytes drains a Get into memory. Documents are small enough that funnel
// operations (parse, substitute, hash) all want the full byte slice.
func GetBytes(ctx context.Context, s Storage, key string) ([]byte, ObjectInfo, error) {
	rc, info, err := s.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, ObjectInfo{}, errors.Join(ErrUnavailable, err)
	}
	return b, info, nil
}
