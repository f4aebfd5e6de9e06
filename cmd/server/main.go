package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iconidentify/socialscope/internal/api"
	"github.com/iconidentify/socialscope/internal/api/handler"
	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/media"
	"github.com/iconidentify/socialscope/internal/repository"
	"github.com/iconidentify/socialscope/internal/scraper"
	"github.com/iconidentify/socialscope/internal/service"
	"github.com/iconidentify/socialscope/internal/worker"
	"github.com/iconidentify/socialscope/pkg/llm"
	"github.com/iconidentify/socialscope/pkg/whisper"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("socialscope %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting socialscope",
		"version", Version,
		"build_time", BuildTime,
	)

	// Local .env is optional; absence is not an error
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	store, err := repository.NewMongoStore(ctx, cfg.Mongo, cfg.Cache.TTL)
	cancel()
	if err != nil {
		logger.Error("failed to connect document store", "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureIndexes(ctx); err != nil {
		cancel()
		logger.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}
	cancel()

	blobs, err := repository.NewMinioStore(cfg.Minio)
	if err != nil {
		logger.Error("failed to create blob store", "error", err)
		os.Exit(1)
	}
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := blobs.EnsureBucket(ctx); err != nil {
		cancel()
		logger.Error("failed to ensure bucket", "error", err)
		os.Exit(1)
	}
	cancel()

	// Initialize dependencies
	queue := repository.NewInMemoryTaskQueue()
	table := service.NewTaskTable(cfg.Tasks)

	downloader := media.NewDownloader(cfg.Download, logger)
	acquirer := media.NewAcquirer(downloader)
	acquirer.Register(domain.PlatformYouTube, media.NewYouTubeResolver())

	transcriber := whisper.NewClient(whisper.Config{
		URL:            cfg.Whisper.URL,
		ConnectTimeout: cfg.Whisper.ConnectTimeout,
		ReadTimeout:    cfg.Whisper.ReadTimeout,
		MaxRetries:     cfg.Whisper.MaxRetries,
		RetryDelay:     cfg.Whisper.RetryDelay,
	})
	analyzer := llm.NewClient(cfg.LLM)
	scrapers := scraper.DefaultRegistry(cfg.Scraper)

	// Initialize services
	pipeline := service.NewPipeline(service.PipelineDeps{
		Table:         table,
		Queue:         queue,
		Store:         store,
		Blobs:         blobs,
		Media:         acquirer,
		Transcriber:   transcriber,
		Analyzer:      analyzer,
		Scrapers:      scrapers,
		PresignExpiry: cfg.Minio.PresignExpiry,
		Logger:        logger,
	})

	instagramScraper, err := scrapers.Lookup(domain.PlatformInstagram)
	if err != nil {
		logger.Error("instagram scraper missing from registry", "error", err)
		os.Exit(1)
	}
	instagramSvc := service.NewInstagram(store, blobs, scraper.NewInstagramFetcher(instagramScraper), downloader, logger)

	// Background sweep of expired task-table entries
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go table.Run(sweepCtx)

	// Initialize handlers
	scrapeHandler := handler.NewScrapeHandler(pipeline, logger)
	instagramHandler := handler.NewInstagramHandler(instagramSvc, logger)
	healthHandler := handler.NewHealthHandler(store, queue, table)

	// Setup router
	router := api.NewRouter(scrapeHandler, instagramHandler, healthHandler, cfg.Server.APIKey, logger)

	// Initialize worker pool
	pool := worker.NewPool(cfg.Worker, queue, pipeline, logger)
	pool.Start()

	// Setup HTTP server
	srv := api.NewServer(cfg.Server.Address(), router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Stop the sweeper
	cancelSweep()

	// Graceful shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Stop accepting new requests
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight tasks to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
