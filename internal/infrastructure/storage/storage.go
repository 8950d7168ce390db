package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"realty-backend/internal/config"
	"realty-backend/internal/infrastructure/storage/local"
	"realty-backend/internal/infrastructure/storage/s3"
)

// ImageStore persists uploaded listing images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Backend() string
}

// Presigner issues direct-to-storage upload URLs. Only the s3 backend has one.
type Presigner interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (uploadURL, publicURL string, err error)
}

// Open builds the ImageStore selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal, "":
		return local.NewOnDisk(cfg.UploadDir, cfg.UploadURLPrefix)
	case config.StorageS3:
		return s3.New(ctx, s3.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
