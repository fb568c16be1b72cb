// Package storage persists binary blobs (recipe images, avatars) and maps
// stored keys to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"foodgram/internal/config"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// BlobStore saves and deletes blobs addressed by slash-separated keys such as
// "recipes/3f1c....jpg".
type BlobStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.MediaDir, mediaBaseURL(cfg.PublicBaseURL)), nil
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func mediaBaseURL(publicBase string) string {
	return strings.TrimRight(publicBase, "/") + "/media"
}

func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
