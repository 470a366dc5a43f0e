package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LocalBlobs is a BlobStore over a directory. Blob names map to relative paths.
type LocalBlobs struct {
	dir string
}

// NewLocalBlobs creates a directory-backed blob store
func NewLocalBlobs(dir string) *LocalBlobs {
	return &LocalBlobs{dir: dir}
}

func (l *LocalBlobs) path(name string) string {
	return filepath.Join(l.dir, filepath.FromSlash(name))
}

// Exists implements BlobStore
func (l *LocalBlobs) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(l.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return true, nil
}

// Upload implements BlobStore. The content type is not recorded.
func (l *LocalBlobs) Upload(_ context.Context, name, _ string, data []byte) error {
	path := l.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Read implements BlobStore
func (l *LocalBlobs) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(l.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// SetCORS implements CORSConfigurer by writing the policy to .cors
func (l *LocalBlobs) SetCORS(ctx context.Context, origins, methods []string, maxAge time.Duration) error {
	policy := fmt.Sprintf("origins=%v methods=%v max_age=%ds\n", origins, methods, int(maxAge.Seconds()))
	return l.Upload(ctx, ".cors", "text/plain", []byte(policy))
}

// Close implements BlobStore
func (l *LocalBlobs) Close() error {
	return nil
}
