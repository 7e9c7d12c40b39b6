// Package objstore wraps the S3 object store used for uploaded document
// files. The only read path it exposes is minting presigned download URLs,
// and every key that reaches it must first pass ExtractKey.
package objstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"tome/internal/platform/config"
)

// Store mints presigned URLs for stored document files.
type Store struct {
	presigner *awss3.PresignClient
	bucket    string
	ttl       time.Duration
}

// New builds the S3-backed store. Returns nil when no bucket is configured
// (dev environments without object storage simply omit download links).
func New(ctx context.Context, cfg config.S3Config, ttl time.Duration) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			awscredentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		presigner: awss3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		ttl:       ttl,
	}, nil
}

// PresignDownload mints a time-limited GET URL for a validated storage key.
// Callers must obtain key from ExtractKey; this method does not re-validate.
func (s *Store) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign download for %s: %w", key, err)
	}
	return req.URL, nil
}
