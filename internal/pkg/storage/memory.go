package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in process memory. It backs local runs and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data        []byte
	contentType string
}

func NewMemory() *Memory {
	return &Memory{objects: map[string]memObject{}}
}

func (m *Memory) Put(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return ObjectInfo{}, err
	}

	sum := md5.Sum(buf.Bytes())
	m.mu.Lock()
	m.objects[bucket+"/"+key] = memObject{data: buf.Bytes(), contentType: opts.ContentType}
	m.mu.Unlock()

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        int64(buf.Len()),
		ETag:        hex.EncodeToString(sum[:]),
		ContentType: opts.ContentType,
	}, nil
}

func (m *Memory) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	delete(m.objects, bucket+"/"+key)
	m.mu.Unlock()
	return nil
}

// PresignGet returns a memory:// URL; it is only meaningful inside the process.
func (m *Memory) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u := url.URL{Scheme: "memory", Host: bucket, Path: "/" + key}
	u.RawQuery = url.Values{"expires": {expiry.String()}}.Encode()
	return u.String(), nil
}

// Object returns a stored object's bytes.
func (m *Memory) Object(bucket, key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[bucket+"/"+key]
	return o.data, o.contentType, ok
}

func (m *Memory) Close() error { return nil }
