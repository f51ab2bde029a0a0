// Package storage archives fetched circular and reference documents so the
// original PDFs remain available after the source site changes or removes
// them.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/finarth/regdesk/internal/config"
)

// Archive stores downloaded documents under a key and returns a location
// the stored copy can be retrieved from.
type Archive interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// NewFromConfig builds the archive backend selected in the config.
func NewFromConfig(ctx context.Context, cfg config.Archive) (Archive, error) {
	switch cfg.Backend {
	case "minio":
		return NewMinio(ctx, cfg.Endpoint, cfg.Region, cfg.BucketName, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	case "local":
		return NewLocal(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// ContentTypeFor guesses a content type from the key's extension.
func ContentTypeFor(key string) string {
	switch filepath.Ext(key) {
	case ".pdf":
		return "application/pdf"
	case ".html", ".htm":
		return "text/html"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
