// Package repository provides persistence: the Mongo document store, the
// MinIO blob store and the in-memory task queue feeding the worker pool.
package repository

import (
	"context"
	"io"
	"time"

	"github.com/iconidentify/socialscope/internal/domain"
)

// DocumentStore persists unified pipeline results and cached Instagram posts.
type DocumentStore interface {
	// SaveResult upserts a unified document keyed by task_id.
	SaveResult(ctx context.Context, doc *domain.UnifiedDocument) error
	// FindByTaskID returns the unified document for a task, or
	// domain.ErrDocumentNotFound.
	FindByTaskID(ctx context.Context, taskID domain.TaskID) (*domain.UnifiedDocument, error)
	// FindByContentID returns an earlier result for the same post, letting
	// repeated scrape requests short-circuit the pipeline.
	FindByContentID(ctx context.Context, platform domain.Platform, contentID string) (*domain.UnifiedDocument, error)

	// GetCachedPost returns a fresh cached post, deleting and missing on
	// records past their expiry stamp.
	GetCachedPost(ctx context.Context, shortcode string) (*domain.CachedPost, error)
	// SavePost upserts a post keyed by shortcode, refreshing its cache
	// stamps, and returns the stored record's identifier.
	SavePost(ctx context.Context, post *domain.CachedPost) (string, error)
}

// BlobStore holds media objects and hands out access URLs.
type BlobStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	PublicURL(objectName string) string
}

// TaskQueue feeds accepted tasks to the worker pool.
type TaskQueue interface {
	Enqueue(ctx context.Context, task *domain.Task) error
	// Dequeue pops the oldest pending task, or domain.ErrNoTasks.
	Dequeue(ctx context.Context) (*domain.Task, error)
}
