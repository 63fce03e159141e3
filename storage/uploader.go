package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"clipstudio/errs"
)

// ObjectStore is the narrow store surface the uploader depends on; *S3
// satisfies it and tests substitute fakes.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	PublicURL(bucket, key string) string
}

// Uploader persists asset bytes into a fixed bucket and returns the object
// key and public URL for each upload.
type Uploader struct {
	store  ObjectStore
	bucket string
	logger *zap.Logger
}

// NewUploader creates an uploader bound to one bucket.
func NewUploader(store ObjectStore, bucket string, logger *zap.Logger) *Uploader {
	return &Uploader{store: store, bucket: bucket, logger: logger}
}

// Upload stores one asset and returns its key and public URL. Failures are
// reported as upload errors scoped to this asset only; the caller continues
// with sibling uploads.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error) {
	key := GenerateKey(filename)

	if err := u.store.Put(ctx, u.bucket, key, body, contentType); err != nil {
		return "", "", errs.Wrap(errs.KindUpload,
			fmt.Sprintf("upload of %q failed", filename), err)
	}

	url := u.store.PublicURL(u.bucket, key)
	u.logger.Info("asset uploaded",
		zap.String("filename", filename),
		zap.String("key", key),
		zap.String("url", url),
	)
	return key, url, nil
}

// Delete removes the stored object for a previously uploaded key.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	if err := u.store.Delete(ctx, u.bucket, key); err != nil {
		return errs.Wrap(errs.KindUpload,
			fmt.Sprintf("delete of %q failed", key), err)
	}
	u.logger.Info("asset deleted", zap.String("key", key))
	return nil
}

// Exists reports whether the object for key is present in the bucket.
func (u *Uploader) Exists(ctx context.Context, key string) (bool, error) {
	return u.store.Exists(ctx, u.bucket, key)
}

// GenerateKey builds a collision-resistant object key from the upload time
// and the sanitized original name.
func GenerateKey(filename string) string {
	return fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeName(filename))
}

// sanitizeName strips characters that are awkward in object keys and URLs.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}
