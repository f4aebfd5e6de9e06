package domain

import (
	"strings"
	"time"
)

// TaskID is a unique identifier for a scrape task.
type TaskID string

// String returns the string representation of the TaskID.
func (id TaskID) String() string {
	return string(id)
}

// Platform identifies a supported social-media platform.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformReddit    Platform = "reddit"
)

// ParsePlatform maps a client-supplied platform string to a Platform.
// Matching is case-insensitive, and "x" is an alias for twitter.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "youtube":
		return PlatformYouTube, nil
	case "instagram":
		return PlatformInstagram, nil
	case "twitter", "x":
		return PlatformTwitter, nil
	case "reddit":
		return PlatformReddit, nil
	default:
		return "", ErrUnknownPlatform
	}
}

// String returns the canonical platform name.
func (p Platform) String() string {
	return string(p)
}

// TaskStatus represents the current state of a scrape task.
type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task tracks one end-to-end scrape-and-analyze request.
type Task struct {
	ID        TaskID
	Platform  Platform
	URL       string
	Status    TaskStatus
	Error     string
	ErrorType string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTask creates a task in the running state.
func NewTask(id TaskID, platform Platform, url string) *Task {
	now := time.Now()
	return &Task{
		ID:        id,
		Platform:  platform,
		URL:       url,
		Status:    TaskStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkCompleted transitions the task to its terminal completed state.
func (t *Task) MarkCompleted() {
	t.Status = TaskStatusCompleted
	t.UpdatedAt = time.Now()
}

// MarkFailed transitions the task to its terminal failed state with the
// captured error message and taxonomy kind.
func (t *Task) MarkFailed(errType, msg string) {
	t.Status = TaskStatusFailed
	t.ErrorType = errType
	t.Error = msg
	t.UpdatedAt = time.Now()
}

// Terminal reports whether the task has reached completed or failed.
func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}
