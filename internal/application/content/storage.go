package content

import (
	"context"
	"time"
)

// ObjectStorageService defines the interface for object storage
// operations, implemented by the infrastructure layer (S3 or the dev
// stub).
type ObjectStorageService interface {
	// Upload writes an object to storage
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL generates a presigned URL for downloading a file.
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
