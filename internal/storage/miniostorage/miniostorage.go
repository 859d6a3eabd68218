// Package miniostorage provides access to the gallery bucket on S3 or any S3-compatible store (MinIO)
package miniostorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/UnendingLoop/FaceGallery/internal/config"
	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// максимум ключей на страницу у ListObjectsV2
const listPageSize = 1000

type MinioGalleryStorage struct {
	bucket string
	core   *minio.Core
}

func NewMinioClient(cfg *config.AppConfig) (*MinioGalleryStorage, error) {
	bucket := cfg.GalleryBucket
	if bucket == "" {
		return nil, errors.New("gallery bucket name is empty")
	}

	// без явных ключей берем креды из окружения лямбды/EC2
	creds := credentials.NewStaticV4(cfg.GalleryAccessKey, cfg.GallerySecretKey, "")
	if cfg.GalleryAccessKey == "" {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.IAM{},
		})
	}

	core, err := minio.NewCore(cfg.GalleryEndpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.GallerySecure,
		Region: cfg.AWSRegion,
	})
	if err != nil {
		return nil, err
	}

	if err := ensureBucket(context.Background(), core.Client, bucket); err != nil {
		log.Println("Failed to check gallery bucket:", err)
		return nil, err
	}

	return &MinioGalleryStorage{bucket: bucket, core: core}, nil
}

func (s *MinioGalleryStorage) Bucket() string {
	return s.bucket
}

// ListPage fetches one ListObjectsV2 page starting at token ("" for the first page).
// Directory placeholders (keys ending in "/") are skipped.
func (s *MinioGalleryStorage) ListPage(ctx context.Context, token string) (*model.GalleryPage, error) {
	// Core.ListObjectsV2 не принимает контекст
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.core.ListObjectsV2(s.bucket, "", "", token, "", listPageSize)
	if err != nil {
		return nil, err
	}

	page := &model.GalleryPage{
		Keys:      make([]string, 0, len(res.Contents)),
		NextToken: res.NextContinuationToken,
		Truncated: res.IsTruncated,
	}
	for _, obj := range res.Contents {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		page.Keys = append(page.Keys, obj.Key)
	}

	return page, nil
}

// Get reads the whole object - used in inline-bytes mode and by the indexer
func (s *MinioGalleryStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	obj, info, _, err := s.core.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if err := obj.Close(); err != nil {
			log.Printf("Failed to close object %q: %v", key, err)
		}
	}()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %q: %w", key, err)
	}

	return data, info.ContentType, nil
}

func (s *MinioGalleryStorage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	if _, err := s.core.Client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return err
	}

	return nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
