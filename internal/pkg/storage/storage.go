// Package storage puts uploaded photos and profile pictures into an object
// store and hands out time-limited download URLs for them.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrMissingSigner is returned by PresignGet when the backend has no
// signing credentials.
var ErrMissingSigner = errors.New("storage: url signer not configured")

// Storage is the subset of object storage the services need.
type Storage interface {
	io.Closer

	Put(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// PutOptions describe the uploaded object. Size may be -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the backend reports after a write.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
}
