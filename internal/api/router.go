package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/socialscope/internal/api/handler"
	mw "github.com/iconidentify/socialscope/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured. When apiKey
// is empty the scraping endpoints are left open, matching the original
// single-tenant deployment.
func NewRouter(
	scrapeHandler *handler.ScrapeHandler,
	instagramHandler *handler.InstagramHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(5 * time.Minute))

	// CORS for the polling frontend
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// Scraping API
	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(mw.APIKeyAuth(apiKey))
		}

		r.Get("/stats", healthHandler.Stats)

		r.Post("/scrape", scrapeHandler.Submit)
		r.Get("/results/{taskID}", scrapeHandler.Results)
		r.Get("/video-url/{taskID}", scrapeHandler.VideoURL)

		r.Post("/get-post-data", instagramHandler.GetPostData)
	})

	return r
}

// NewServer builds an http.Server around the router with the configured
// timeouts.
func NewServer(addr string, router http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}
