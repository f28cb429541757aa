// Package blob stores uploaded dealer documents on the local filesystem or
// in an S3 compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/revomotors/api-leads/internal/config"
)

var ErrNotFound = errors.New("document file not found")

type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewFromConfig picks the backend named by BLOB_BACKEND.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	switch backend := strings.ToLower(strings.TrimSpace(cfg.BlobBackend)); backend {
	case "", "filesystem", "fs", "local":
		return NewFilesystemStore(cfg.BlobFSRoot)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported blob backend: %s", backend)
	}
}

// DocumentKey builds a collision free key for a dealer's uploaded file,
// keeping the original extension.
func DocumentKey(dealerID uint, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("dealers/%d/%s%s", dealerID, uuid.NewString(), ext)
}
