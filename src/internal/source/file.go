// FILE: logship/src/internal/source/file.go
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore serves objects from a local directory laid out as <root>/<bucket>/<key>.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", abs)
	}
	return &FileStore{root: abs}, nil
}

func (f *FileStore) Size(ctx context.Context, bucket, key string) (int64, error) {
	path, err := f.path(bucket, key)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *FileStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	path, err := f.path(bucket, key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// path keeps lookups inside the root
func (f *FileStore) path(bucket, key string) (string, error) {
	p := filepath.Join(f.root, bucket, filepath.FromSlash(key))
	if p != f.root && !strings.HasPrefix(p, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("object path escapes store root: %s/%s", bucket, key)
	}
	return p, nil
}
