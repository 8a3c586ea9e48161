package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSOptions configure Google Cloud Storage. Client is built by the caller
// (credentials, endpoint). GoogleAccessID and PrivateKey enable signed URLs.
type GCSOptions struct {
	Client         *gcs.Client
	ClientOptions  []option.ClientOption
	GoogleAccessID string
	PrivateKey     []byte
}

type GCSAdapter struct {
	client   *gcs.Client
	accessID string
	key      []byte
	now      func() time.Time
}

func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	client := opts.Client
	if client == nil {
		c, err := gcs.NewClient(ctx, opts.ClientOptions...)
		if err != nil {
			return nil, err
		}
		client = c
	}

	return &GCSAdapter{
		client:   client,
		accessID: opts.GoogleAccessID,
		key:      opts.PrivateKey,
		now:      time.Now,
	}, nil
}

func (g *GCSAdapter) Put(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	if _, err := io.Copy(w, r); err != nil {
		return ObjectInfo{}, errors.Join(err, w.Close())
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: bucket, Key: key, Size: opts.Size, ContentType: opts.ContentType}
	if attrs := w.Attrs(); attrs != nil {
		info.Size = attrs.Size
		info.ETag = attrs.Etag
	}
	return info, nil
}

func (g *GCSAdapter) Delete(ctx context.Context, bucket, key string) error {
	return g.client.Bucket(bucket).Object(key).Delete(ctx)
}

func (g *GCSAdapter) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if g.accessID == "" || len(g.key) == 0 {
		return "", ErrMissingSigner
	}
	return gcs.SignedURL(bucket, key, &gcs.SignedURLOptions{
		Method:         http.MethodGet,
		Expires:        g.now().Add(expiry),
		GoogleAccessID: g.accessID,
		PrivateKey:     g.key,
		Scheme:         gcs.SigningSchemeV4,
	})
}

func (g *GCSAdapter) Close() error { return g.client.Close() }
