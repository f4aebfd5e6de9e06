// Package service holds the orchestration core: the sequential analysis
// pipeline, the in-memory task table and the Instagram direct-fetch flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/media"
	"github.com/iconidentify/socialscope/internal/repository"
	"github.com/iconidentify/socialscope/internal/scraper"
	"github.com/iconidentify/socialscope/internal/unify"
	"github.com/iconidentify/socialscope/pkg/llm"
	"github.com/iconidentify/socialscope/pkg/whisper"
)

// Pipeline runs the sequential analysis flow for one task: download,
// transcribe, upload, scrape, analyze, unify, persist. Stages run strictly in
// that order; a fatal stage error fails the whole task with the stage name as
// its error type.
type Pipeline struct {
	table         *TaskTable
	queue         repository.TaskQueue
	store         repository.DocumentStore
	blobs         repository.BlobStore
	media         *media.Acquirer
	transcriber   whisper.Client
	analyzer      llm.Client
	scrapers      *scraper.Registry
	presignExpiry time.Duration
	logger        *slog.Logger
	newID         func() domain.TaskID
	now           func() time.Time
}

// PipelineDeps carries the pipeline's collaborators.
type PipelineDeps struct {
	Table         *TaskTable
	Queue         repository.TaskQueue
	Store         repository.DocumentStore
	Blobs         repository.BlobStore
	Media         *media.Acquirer
	Transcriber   whisper.Client
	Analyzer      llm.Client
	Scrapers      *scraper.Registry
	PresignExpiry time.Duration
	Logger        *slog.Logger
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		table:         deps.Table,
		queue:         deps.Queue,
		store:         deps.Store,
		blobs:         deps.Blobs,
		media:         deps.Media,
		transcriber:   deps.Transcriber,
		analyzer:      deps.Analyzer,
		scrapers:      deps.Scrapers,
		presignExpiry: deps.PresignExpiry,
		logger:        deps.Logger,
		newID:         func() domain.TaskID { return domain.TaskID(uuid.New().String()) },
		now:           time.Now,
	}
}

// Start accepts a scrape request. If the post was already analyzed the stored
// document comes back immediately; otherwise a new running task is enqueued
// and returned.
func (p *Pipeline) Start(ctx context.Context, platform domain.Platform, url string) (*domain.Task, *domain.UnifiedDocument, error) {
	contentID := domain.ContentID(platform, url)
	if existing, err := p.store.FindByContentID(ctx, platform, contentID); err == nil {
		p.logger.Info("reusing stored result", "platform", platform, "content_id", contentID)
		return nil, existing, nil
	} else if !errors.Is(err, domain.ErrDocumentNotFound) {
		p.logger.Warn("existing-result lookup failed, scraping anyway", "error", err)
	}

	task := domain.NewTask(p.newID(), platform, url)
	p.table.PutRunning(task)
	if err := p.queue.Enqueue(ctx, task); err != nil {
		return nil, nil, fmt.Errorf("enqueue task: %w", err)
	}

	p.logger.Info("task accepted", "task_id", task.ID, "platform", platform, "url", url)
	return task, nil, nil
}

// Run executes the full stage sequence for a dequeued task.
func (p *Pipeline) Run(ctx context.Context, task *domain.Task) {
	logger := p.logger.With("task_id", task.ID, "platform", task.Platform)

	doc, err := p.run(ctx, task, logger)
	if err != nil {
		errType := "unknown"
		var pe *domain.PipelineError
		if errors.As(err, &pe) {
			errType = pe.Stage
		}
		if errors.Is(err, domain.ErrEmptyTranscript) {
			errType = "empty_transcript"
		}
		logger.Error("task failed", "error_type", errType, "error", err)
		p.table.Fail(task.ID, errType, err.Error())
		return
	}

	p.table.Complete(task.ID, doc)
	logger.Info("task completed")
}

func (p *Pipeline) run(ctx context.Context, task *domain.Task, logger *slog.Logger) (*domain.UnifiedDocument, error) {
	// Stage 1: download the playable media into memory. Image and text
	// posts have no stream; they skip straight to scraping.
	var buf *media.Buffer
	logger.Info("downloading media")
	buf, err := p.media.Acquire(ctx, task.Platform, task.URL)
	if err != nil {
		if !errors.Is(err, domain.ErrNoPlayableMedia) {
			return nil, domain.NewPipelineError("download", domain.ErrKindConnection, err)
		}
		logger.Info("no playable media, skipping transcription and upload")
		buf = nil
	}

	// Stage 2: transcribe before anything else touches storage. An empty
	// transcript fails the task; there is nothing to analyze downstream.
	var transcript string
	if buf != nil {
		logger.Info("transcribing media", "bytes", buf.Len())
		transcript, err = p.transcriber.Transcribe(ctx, task.ID, buf.Reader())
		if err != nil {
			return nil, domain.NewPipelineError("transcription", domain.ErrKindBackend, err)
		}
	}

	// Stage 3: upload the verified media to the blob store.
	var minioPath string
	if buf != nil {
		minioPath = repository.TaskVideoPath(task.ID)
		logger.Info("uploading media", "object", minioPath)
		if err := p.blobs.Put(ctx, minioPath, buf.Reader(), buf.Len(), buf.ContentType()); err != nil {
			return nil, domain.NewPipelineError("upload", domain.ErrKindBackend, err)
		}
	}

	// Stage 4: scrape the platform metadata.
	logger.Info("scraping metadata")
	sc, err := p.scrapers.Lookup(task.Platform)
	if err != nil {
		return nil, domain.NewPipelineError("scrape", domain.ErrKindConfiguration, err)
	}
	bundle, err := sc.Scrape(ctx, task.URL, task.ID)
	if err != nil {
		return nil, domain.NewPipelineError("scrape", domain.ErrKindBackend, err)
	}
	if len(bundle) == 0 {
		return nil, domain.NewPipelineError("scrape", domain.ErrKindBackend, domain.ErrScrapeNoData)
	}

	// Stage 5: LLM analysis. Failures here null the fields instead of
	// failing the task; a document without a summary still has value.
	analysis := p.analyze(ctx, transcript, logger)

	// Stage 6: unify and persist.
	enriched := bundle.Clone()
	if minioPath != "" {
		enriched["minio_video_path"] = minioPath
	}
	doc := unify.Transform(task.Platform, enriched, analysis, p.now())
	doc.TaskID = string(task.ID)
	doc.Status = string(domain.TaskStatusCompleted)

	logger.Info("persisting result")
	if err := p.store.SaveResult(ctx, doc); err != nil {
		return nil, domain.NewPipelineError("persist", domain.ErrKindBackend, err)
	}
	return doc, nil
}

func (p *Pipeline) analyze(ctx context.Context, transcript string, logger *slog.Logger) *domain.AnalysisPayload {
	analysis := &domain.AnalysisPayload{}
	if transcript == "" {
		return analysis
	}
	analysis.Transcript = &transcript

	summary, err := p.analyzer.Summarize(ctx, transcript)
	if err != nil {
		logger.Warn("summary failed", "error", err)
	} else {
		analysis.Summary = &summary
	}

	sentiment, err := p.analyzer.ClassifySentiment(ctx, transcript)
	if err != nil {
		logger.Warn("sentiment failed", "error", err)
	} else {
		analysis.Sentiment = &sentiment
	}
	return analysis
}

// Result is what the results endpoint reports for a task.
type Result struct {
	Status    domain.TaskStatus
	Platform  domain.Platform
	Error     string
	ErrorType string
	Document  *domain.UnifiedDocument
	Pending   bool
}

// Result resolves a task's current state: the in-memory table first, then the
// document store, then pending. Unknown IDs are indistinguishable from
// not-yet-visible ones by design.
func (p *Pipeline) Result(ctx context.Context, id domain.TaskID) (*Result, error) {
	if entry, ok := p.table.Get(id); ok {
		res := &Result{
			Status:    entry.Task.Status,
			Platform:  entry.Task.Platform,
			Error:     entry.Task.Error,
			ErrorType: entry.Task.ErrorType,
			Document:  entry.Document,
		}
		return res, nil
	}

	doc, err := p.store.FindByTaskID(ctx, id)
	if err == nil {
		return &Result{Status: domain.TaskStatusCompleted, Document: doc}, nil
	}
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, err
	}
	return &Result{Pending: true}, nil
}

// VideoURL generates a temporary direct link to a task's stored video.
func (p *Pipeline) VideoURL(ctx context.Context, id domain.TaskID) (string, error) {
	doc, err := p.store.FindByTaskID(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.MinioVideoPath == "" {
		return "", domain.ErrBlobNotFound
	}
	return p.blobs.PresignedURL(ctx, doc.MinioVideoPath, p.presignExpiry)
}
