// Package storage keeps advertisement photos in S3-compatible object
// storage. Advertisements persist only the object keys; bytes live here.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"adboard/pkg/config"
	errs "adboard/pkg/errors"
	"adboard/pkg/logging"
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PhotoStore struct {
	client *minio.Client
	bucket string
	log    *logging.ComponentLogger
}

// NewPhotoStore connects to the object store and ensures the photo bucket
// exists.
func NewPhotoStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (*PhotoStore, error) {
	const op = "storage.NewPhotoStore"

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, errs.NewExternal(op, "minio", "failed to create client", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, errs.NewExternal(op, "minio", "failed to check bucket", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errs.NewExternal(op, "minio", "failed to create bucket", err)
		}
	}

	store := &PhotoStore{client: client, bucket: cfg.MinioBucket}
	if log != nil {
		store.log = log.WithComponent("photo_store")
	}
	return store, nil
}

// Upload stores one photo and returns the object key to reference it by.
func (s *PhotoStore) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	const op = "storage.PhotoStore.Upload"

	ext, ok := allowedContentTypes[strings.ToLower(contentType)]
	if !ok {
		return "", errs.NewValidation(op, "unsupported photo content type: "+contentType, nil)
	}
	key := fmt.Sprintf("photos/%s%s", uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errs.NewExternal(op, "minio", "failed to store photo", err)
	}
	if s.log != nil {
		s.log.Debug("photo stored", logging.String("key", key))
	}
	return key, nil
}

// URL returns a time-limited download link for one photo key.
func (s *PhotoStore) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	const op = "storage.PhotoStore.URL"

	if path.Dir(key) != "photos" {
		return "", errs.NewValidation(op, "unknown photo key: "+key, nil)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", errs.NewExternal(op, "minio", "failed to presign photo url", err)
	}
	return u.String(), nil
}

// Delete removes one photo. Deleting an absent key is not an error.
func (s *PhotoStore) Delete(ctx context.Context, key string) error {
	const op = "storage.PhotoStore.Delete"

	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return errs.NewExternal(op, "minio", "failed to delete photo", err)
	}
	return nil
}
