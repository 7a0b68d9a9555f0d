// Package storage uploads listing photos to S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/V4T54L/rentwise/internal/domain"
)

// NewS3Client loads the default AWS configuration for region. A non-empty
// endpoint (e.g. http://localstack:4566) overrides the S3 endpoint and
// switches to path-style addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Uploader is the part of manager.Uploader used here.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// PhotoStore implements domain.PhotoStorage on an S3 bucket.
type PhotoStore struct {
	uploader Uploader
	bucket   string
	logger   *slog.Logger
}

// NewPhotoStore creates a PhotoStore using a multipart upload manager.
func NewPhotoStore(client *s3.Client, bucket string, logger *slog.Logger) *PhotoStore {
	return NewPhotoStoreWithUploader(manager.NewUploader(client), bucket, logger)
}

// NewPhotoStoreWithUploader creates a PhotoStore around any Uploader.
func NewPhotoStoreWithUploader(u Uploader, bucket string, logger *slog.Logger) *PhotoStore {
	return &PhotoStore{uploader: u, bucket: bucket, logger: logger.With("component", "photo_store")}
}

// Upload stores the photo under key and returns the object URL.
func (s *PhotoStore) Upload(ctx context.Context, key string, photo domain.Photo) (string, error) {
	if s.bucket == "" {
		return "", errors.New("S3 bucket is not configured")
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   photo.Body,
	}
	if photo.ContentType != "" {
		input.ContentType = aws.String(photo.ContentType)
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	s.logger.Debug("photo uploaded", "key", key, "bytes", photo.Size)
	return out.Location, nil
}
