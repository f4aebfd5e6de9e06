package domain

import "errors"

// Domain errors.
var (
	// ErrTaskNotFound is returned when a task cannot be found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoTasks is returned when the queue has no tasks to process.
	ErrNoTasks = errors.New("no tasks available")

	// ErrUnknownPlatform is returned when a platform string cannot be parsed.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidURL is returned when a source URL is missing or malformed.
	ErrInvalidURL = errors.New("invalid source URL")

	// ErrNoPlayableMedia is returned when a post has no progressive media
	// stream to download (image or text-only posts).
	ErrNoPlayableMedia = errors.New("no playable media stream")

	// ErrDownloadFailed is returned when the media download fails.
	ErrDownloadFailed = errors.New("media download failed")

	// ErrMediaTooLarge is returned when the media exceeds the in-memory buffer cap.
	ErrMediaTooLarge = errors.New("media exceeds size limit")

	// ErrEmptyTranscript is returned when the transcription call succeeds
	// but carries no text under either accepted field name.
	ErrEmptyTranscript = errors.New("transcription result was empty")

	// ErrScrapeNoData is returned when a platform scraper produces no data bundle.
	ErrScrapeNoData = errors.New("scraping engine returned no data")

	// ErrDocumentNotFound is returned when a document store lookup misses.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrBlobNotFound is returned when a stored media object cannot be found.
	ErrBlobNotFound = errors.New("media object not found")

	// ErrServiceUnavailable is returned for transient upstream 502/503/504 responses.
	ErrServiceUnavailable = errors.New("remote service unavailable")

	// ErrRateLimited is returned when an upstream rejects us for request volume.
	ErrRateLimited = errors.New("rate limited")
)

// ErrorKind classifies pipeline failures for the status record.
type ErrorKind string

const (
	ErrKindConfiguration  ErrorKind = "configuration"
	ErrKindAuthentication ErrorKind = "authentication"
	ErrKindConnection     ErrorKind = "connection"
	ErrKindValidation     ErrorKind = "validation"
	ErrKindBackend        ErrorKind = "backend"
	ErrKindUnknown        ErrorKind = "unknown"
)

// PipelineError tags a stage failure with its taxonomy kind. Stage names the
// pipeline step that failed ("download", "transcription", "scrape", ...) and is
// what ends up in the failed task record's error_type field.
type PipelineError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *PipelineError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a PipelineError for a stage.
func NewPipelineError(stage string, kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, Err: err}
}
