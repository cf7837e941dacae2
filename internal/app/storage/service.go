/*
Package storage talks to the S3-compatible bucket that holds user avatars.

Browsers upload and download directly through presigned URLs; the server only signs
requests, inspects uploaded objects and removes replaced ones.
*/
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ObjectInfo is the subset of object metadata the server checks.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// StorageService defines the public interface for the file storage service.
type StorageService interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// Stat returns the object's metadata, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

// NewStorageService returns the S3 implementation of StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}
