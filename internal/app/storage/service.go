// Package storage provides object storage for user avatars through
// presigned URLs, so image bytes never pass through the chat server.
package storage

import (
	"context"
	"fmt"
	"time"

	"studychat/internal/pkg/randx"
)

// Avatar upload constraints enforced before a presigned URL is issued.
const (
	MaxAvatarSize = int64(2 << 20) // 2 MiB

	UploadURLTTL   = 10 * time.Minute
	DownloadURLTTL = 24 * time.Hour
)

// allowedAvatarTypes maps accepted avatar MIME types to object key suffixes.
var allowedAvatarTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// IsAllowedAvatarType reports whether the MIME type may be uploaded as an avatar.
func IsAllowedAvatarType(mimeType string) bool {
	_, ok := allowedAvatarTypes[mimeType]
	return ok
}

// AvatarKey builds a fresh object key for a user's avatar upload. Keys embed
// a random component so a re-upload never collides with a cached object.
func AvatarKey(userID, mimeType string) string {
	return fmt.Sprintf("avatars/%s/%s.%s", userID, randx.NewID(), allowedAvatarTypes[mimeType])
}

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service defines the public interface for avatar storage.
type Service interface {
	// PresignUpload generates a pre-signed URL for uploading an avatar.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading an avatar.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object specified by the given key.
	Delete(ctx context.Context, key string) error
}

// NewService is the factory function for Service.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewService(cfg ServiceConfig) (Service, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}
