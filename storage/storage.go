// Package storage saves uploaded product images on local disk or in an
// object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-storefront/config"
)

// ImageStore persists image bytes and returns a reference clients can fetch.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

var (
	ErrUnsupportedType = errors.New("invalid file type, only images are allowed")
	ErrTooLarge        = errors.New("file size exceeds maximum allowed size")
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidateImage checks the extension and size of an upload.
func ValidateImage(filename string, size, maxSize int64) error {
	if !allowedImageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedType
	}
	if size > maxSize {
		return ErrTooLarge
	}
	return nil
}

// objectKey builds a unique, URL-safe name that keeps the original extension.
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString(), ext)
}

// New returns the ImageStore selected by cfg.StorageDriver.
func New(ctx context.Context, cfg config.Config) (ImageStore, error) {
	switch cfg.StorageDriver {
	case config.StorageMinio:
		store, err := NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure minio bucket: %w", err)
		}
		return store, nil
	case config.StorageGCS:
		return NewGCSStore(ctx, cfg.GCS)
	default:
		return NewLocalStore(cfg.UploadDir, "/uploads/")
	}
}
