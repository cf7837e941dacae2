package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"connect/internal/pkg/logx"
)

// ErrObjectNotFound is returned by Stat for missing keys.
var ErrObjectNotFound = errors.New("object not found")

// s3Client implements StorageService against an S3-compatible endpoint.
type s3Client struct {
	cfg     ServiceConfig
	client  *s3.Client
	presign *s3.PresignClient
	logger  zerolog.Logger
}

// newS3Client builds a path-style client with static credentials.
func newS3Client(ctx context.Context, cfg ServiceConfig) (*s3Client, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return &s3Client{
		cfg:     cfg,
		client:  client,
		presign: s3.NewPresignClient(client),
		logger:  logx.Component("Storage").With().Str("bucket", cfg.S3BucketName).Logger(),
	}, nil
}

// PresignUpload signs a PUT of exactly fileSize bytes of mimeType.
func (c *s3Client) PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error) {
	resp, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.S3BucketName),
		Key:           aws.String(key),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(fileSize),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to presign upload.")
		return "", fmt.Errorf("presign upload: %w", err)
	}

	return resp.URL, nil
}

// PresignDownload signs a GET of key.
func (c *s3Client) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	resp, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to presign download.")
		return "", fmt.Errorf("presign download: %w", err)
	}

	return resp.URL, nil
}

// Delete removes key from the bucket.
func (c *s3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("S3 delete failed.")
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

// Stat reads the content type and size of key.
func (c *s3Client) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	resp, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to read object metadata.")
		return ObjectInfo{}, fmt.Errorf("head object: %w", err)
	}

	info := ObjectInfo{ContentType: aws.ToString(resp.ContentType)}
	if resp.ContentLength != nil {
		info.Size = *resp.ContentLength
	}
	return info, nil
}
