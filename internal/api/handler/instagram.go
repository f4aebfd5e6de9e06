package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iconidentify/socialscope/internal/domain"
)

// PostService resolves Instagram post data, cached or fresh.
type PostService interface {
	GetPostData(ctx context.Context, rawURL string) (*domain.CachedPost, error)
}

// InstagramHandler handles the direct Instagram post-data endpoint.
type InstagramHandler struct {
	svc    PostService
	logger *slog.Logger
}

// NewInstagramHandler creates a new Instagram handler.
func NewInstagramHandler(svc PostService, logger *slog.Logger) *InstagramHandler {
	return &InstagramHandler{
		svc:    svc,
		logger: logger,
	}
}

// PostDataRequest is the JSON request body for post-data lookups.
type PostDataRequest struct {
	URL string `json:"url"`
}

// GetPostData handles POST /get-post-data. Like the polling endpoints,
// lookup failures answer 200 with an error field; only a malformed body or an
// unexpected internal fault breaks the shape.
func (h *InstagramHandler) GetPostData(w http.ResponseWriter, r *http.Request) {
	var req PostDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.writeJSON(w, http.StatusOK, map[string]string{"error": "url is required"})
		return
	}

	post, err := h.svc.GetPostData(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			h.writeJSON(w, http.StatusOK, map[string]string{"error": "invalid instagram URL"})
			return
		}
		if errors.Is(err, domain.ErrScrapeNoData) {
			h.writeJSON(w, http.StatusOK, map[string]string{"error": "post not found"})
			return
		}
		h.logger.Error("post data fetch failed", "error", err, "url", req.URL)
		h.writeError(w, http.StatusInternalServerError, "failed to fetch post data")
		return
	}

	h.writeJSON(w, http.StatusOK, post)
}

func (h *InstagramHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *InstagramHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
