// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const pngContentType = "image/png"

// MinioStore keeps images in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// MinioOptions carries the connection settings of a [MinioStore].
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStore connects to the endpoint and creates the bucket when missing.
func NewMinioStore(ctx context.Context, options MinioOptions) (*MinioStore, error) {
	client, err := minio.New(options.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(options.AccessKey, options.SecretKey, ""),
		Secure: options.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media_minio_client_failed: %w", err)
	}

	exists, err := client.BucketExists(ctx, options.Bucket)
	if err != nil {
		return nil, fmt.Errorf("media_minio_bucket_check_failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, options.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("media_minio_make_bucket_failed: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: options.Bucket}, nil
}

// Put uploads data as a single PNG object. S3 writes are atomic per object.
func (store *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := store.client.PutObject(ctx, store.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: pngContentType,
	})
	if err != nil {
		return fmt.Errorf("media_minio_put_failed: %w", err)
	}
	return nil
}

// Get downloads the object under key.
func (store *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := store.client.GetObject(ctx, store.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("media_minio_get_failed: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("media_minio_read_failed: %w", err)
	}
	return data, nil
}
