package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchive stores documents under a directory on disk. Used in
// development and for single-node deployments without object storage.
type LocalArchive struct {
	dir string
}

// NewLocal creates the root directory if needed.
func NewLocal(dir string) (*LocalArchive, error) {
	if dir == "" {
		return nil, fmt.Errorf("local archive: path not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalArchive{dir: dir}, nil
}

func (s *LocalArchive) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	// Keys come from ingest runs; reject anything that would escape the root.
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("local archive: invalid key %q", key)
	}

	dst := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}
