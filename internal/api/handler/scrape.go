package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/service"
)

// ScrapeService is the slice of the pipeline the scrape endpoints need.
type ScrapeService interface {
	Start(ctx context.Context, platform domain.Platform, url string) (*domain.Task, *domain.UnifiedDocument, error)
	Result(ctx context.Context, id domain.TaskID) (*service.Result, error)
	VideoURL(ctx context.Context, id domain.TaskID) (string, error)
}

// ScrapeHandler handles task submission and polling.
type ScrapeHandler struct {
	svc    ScrapeService
	logger *slog.Logger
}

// NewScrapeHandler creates a new scrape handler.
func NewScrapeHandler(svc ScrapeService, logger *slog.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		svc:    svc,
		logger: logger,
	}
}

// ScrapeRequest is the JSON request body for task submission.
type ScrapeRequest struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// ScrapeResponse is returned when a new task is accepted.
type ScrapeResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// Submit handles POST /scrape. Validation failures are reported as 200
// responses carrying an error field; the polling clients never branch on
// HTTP status.
func (h *ScrapeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.writeJSON(w, http.StatusOK, map[string]string{"error": "url is required"})
		return
	}

	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"error": "unsupported platform: " + req.Platform})
		return
	}

	task, existing, err := h.svc.Start(r.Context(), platform, req.URL)
	if err != nil {
		h.logger.Error("start task failed", "error", err, "platform", platform)
		h.writeError(w, http.StatusInternalServerError, "failed to start task")
		return
	}

	// A previously completed scrape of the same content is returned as-is
	// instead of spending another pipeline run on it.
	if existing != nil {
		h.writeJSON(w, http.StatusOK, existing)
		return
	}

	h.writeJSON(w, http.StatusOK, ScrapeResponse{
		TaskID: string(task.ID),
		Status: "started",
	})
}

// Results handles GET /results/{taskID}.
func (h *ScrapeHandler) Results(w http.ResponseWriter, r *http.Request) {
	taskID := domain.TaskID(chi.URLParam(r, "taskID"))
	if taskID == "" {
		h.writeError(w, http.StatusBadRequest, "missing task ID")
		return
	}

	res, err := h.svc.Result(r.Context(), taskID)
	if err != nil {
		h.logger.Error("resolve task failed", "error", err, "task_id", taskID)
		h.writeError(w, http.StatusInternalServerError, "failed to resolve task")
		return
	}

	switch {
	case res.Pending:
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
	case res.Status == domain.TaskStatusFailed:
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":     string(domain.TaskStatusFailed),
			"error":      res.Error,
			"error_type": res.ErrorType,
		})
	case res.Status == domain.TaskStatusCompleted && res.Document != nil:
		h.writeJSON(w, http.StatusOK, res.Document)
	default:
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":   string(domain.TaskStatusRunning),
			"platform": string(res.Platform),
		})
	}
}

// VideoURLResponse carries a presigned link to a task's stored video.
type VideoURLResponse struct {
	URL string `json:"url"`
}

// VideoURL handles GET /video-url/{taskID}.
func (h *ScrapeHandler) VideoURL(w http.ResponseWriter, r *http.Request) {
	taskID := domain.TaskID(chi.URLParam(r, "taskID"))
	if taskID == "" {
		h.writeError(w, http.StatusBadRequest, "missing task ID")
		return
	}

	url, err := h.svc.VideoURL(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			h.writeError(w, http.StatusNotFound, "task not found")
			return
		}
		if errors.Is(err, domain.ErrBlobNotFound) {
			h.writeError(w, http.StatusNotFound, "no video stored for this task")
			return
		}
		h.logger.Error("presign video failed", "error", err, "task_id", taskID)
		h.writeError(w, http.StatusInternalServerError, "failed to generate video URL")
		return
	}

	h.writeJSON(w, http.StatusOK, VideoURLResponse{URL: url})
}

func (h *ScrapeHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ScrapeHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
