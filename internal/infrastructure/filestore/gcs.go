package filestore

import (
	"bytes"
	"context"
	"errors"
	"path"

	"cloud.google.com/go/storage"

	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// GCS stores files as objects under prefix in a single bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(client *storage.Client, bucket, prefix string) (*GCS, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCS) objectPath(key string) string {
	return path.Join(s.prefix, key)
}

func (s *GCS) Write(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := helpers.UploadObject(ctx, s.client, s.bucket, s.objectPath(key), contentType, bytes.NewReader(data))
	return err
}

func (s *GCS) Delete(ctx context.Context, key string) error {
	return helpers.DeleteObject(ctx, s.client, s.bucket, s.objectPath(key))
}

// URL returns the public URL of key.
func (s *GCS) URL(key string) string {
	return helpers.PublicURL(s.bucket, s.objectPath(key))
}
