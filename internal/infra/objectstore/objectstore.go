// Package objectstore wraps the MinIO client used as the crawler's blob
// store for article bodies, named "<source>/<content_uuid>.txt" per the
// storage pipeline's two-store write ordering.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// contentType is fixed: every object this store holds is a UTF-8 item body.
const contentType = "text/plain"

// Config describes how to reach the MinIO (or any S3-compatible) endpoint
// backing the store, and which bucket holds content bodies.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store puts, gets, and deletes item bodies in one bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to the configured endpoint and ensures the target bucket
// exists, creating it if necessary.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: connect: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("objectstore: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("objectstore: create bucket: %w", err)
		}
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// ObjectName builds the "<source>/<content_uuid>.txt" key the storage
// pipeline uses for a content row's body_ref.
func ObjectName(source, contentUUID string) string {
	return source + "/" + contentUUID + ".txt"
}

// Put uploads body at objectName with a fixed text/plain content type.
func (s *Store) Put(ctx context.Context, objectName string, body []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("objectstore: put %s: %w", objectName, err)
	}
	return nil
}

// Get downloads the object at objectName.
func (s *Store) Get(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objectstore: get %s: %w", objectName, err)
	}
	defer func() { _ = obj.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("objectstore: read %s: %w", objectName, err)
	}
	return buf.Bytes(), nil
}

// Delete removes objectName. Used as the storage pipeline's best-effort
// cleanup when the matching relational insert fails after the object PUT
// already succeeded.
func (s *Store) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("objectstore: delete %s: %w", objectName, err)
	}
	return nil
}
