package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
)

// MinioStore implements BlobStore on MinIO.
type MinioStore struct {
	client *minio.Client
	bucket string
	secure bool
	host   string
}

// NewMinioStore creates a MinIO-backed blob store.
func NewMinioStore(cfg config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		secure: cfg.Secure,
		host:   cfg.Endpoint,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads an object.
func (s *MinioStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objectName, err)
	}
	return nil
}

// PresignedURL generates a temporary direct link to an object.
func (s *MinioStore) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", objectName, err)
	}
	return u.String(), nil
}

// PublicURL builds the plain object URL for buckets with public read access.
func (s *MinioStore) PublicURL(objectName string) string {
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.host, s.bucket, objectName)
}

// Object naming is flat and identifier-keyed so the frontend can derive media
// locations from a record id alone. The exact shapes are load-bearing.

// MediaObjectName names a post's primary media object.
func MediaObjectName(id, mediaType string) string {
	return fmt.Sprintf("%s.%s", id, mediaExtension(mediaType))
}

// ThumbObjectName names a video post's thumbnail object.
func ThumbObjectName(id string) string {
	return fmt.Sprintf("%s_thumb.jpg", id)
}

// ProfileObjectName names a creator's profile picture object.
func ProfileObjectName(id string) string {
	return fmt.Sprintf("profile_%s.jpg", id)
}

// TaskVideoPath names the pipeline's uploaded video for a task.
func TaskVideoPath(taskID domain.TaskID) string {
	return fmt.Sprintf("%s/%s.mp4", taskID, taskID)
}

// MediaContentType returns the upload content type matching MediaObjectName.
func MediaContentType(mediaType string) string {
	if isVideoMedia(mediaType) {
		return "video/mp4"
	}
	return "image/jpeg"
}

func mediaExtension(mediaType string) string {
	if isVideoMedia(mediaType) {
		return "mp4"
	}
	return "jpg"
}

func isVideoMedia(mediaType string) bool {
	switch strings.ToLower(mediaType) {
	case "video", "video/reel":
		return true
	}
	return false
}
