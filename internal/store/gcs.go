package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBlobs is the production BlobStore
type GCSBlobs struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSBlobs opens the named bucket
func NewGCSBlobs(ctx context.Context, bucket, credentialsFile string) (*GCSBlobs, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSBlobs{client: client, bucket: client.Bucket(bucket)}, nil
}

// Exists implements BlobStore
func (g *GCSBlobs) Exists(ctx context.Context, name string) (bool, error) {
	_, err := g.bucket.Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return true, nil
}

// Upload implements BlobStore
func (g *GCSBlobs) Upload(ctx context.Context, name, contentType string, data []byte) error {
	w := g.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

// Read implements BlobStore
func (g *GCSBlobs) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := g.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// SetCORS implements CORSConfigurer
func (g *GCSBlobs) SetCORS(ctx context.Context, origins, methods []string, maxAge time.Duration) error {
	_, err := g.bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{Origins: origins, Methods: methods, MaxAge: maxAge}},
	})
	if err != nil {
		return fmt.Errorf("update bucket cors: %w", err)
	}
	return nil
}

// Close releases the client
func (g *GCSBlobs) Close() error {
	return g.client.Close()
}
