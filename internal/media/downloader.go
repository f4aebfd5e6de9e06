package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/retry"
)

// Downloader fetches media streams over HTTP and buffers them in memory so
// the bytes can feed both transcription and blob upload.
type Downloader struct {
	// client has no overall timeout; large files are bounded by the request
	// context and a response header deadline instead.
	client *http.Client
	cfg    config.DownloadConfig
	logger *slog.Logger
}

func NewDownloader(cfg config.DownloadConfig, logger *slog.Logger) *Downloader {
	transport := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
	}
	return &Downloader{
		client: &http.Client{Transport: transport},
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch downloads the stream into memory with retry on transient failures.
func (d *Downloader) Fetch(ctx context.Context, stream *Stream) (*Buffer, error) {
	retryCfg := retry.Config{
		MaxAttempts:   3,
		InitialDelay:  d.cfg.RetryDelay,
		MaxDelay:      d.cfg.MaxRetryDelay,
		BackoffFactor: 2,
	}

	buf, err := retry.DoWithCheck(ctx, retryCfg, func() (*Buffer, error) {
		return d.fetchOnce(ctx, stream)
	}, isRetryable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err)
	}
	return buf, nil
}

func (d *Downloader) fetchOnce(ctx context.Context, stream *Stream) (*Buffer, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stream.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Mimic a browser; some CDNs reject bare clients.
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("stream url rejected: status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if resp.ContentLength > d.cfg.MaxBytes {
		return nil, domain.ErrMediaTooLarge
	}

	start := time.Now()
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > d.cfg.MaxBytes {
		return nil, domain.ErrMediaTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = stream.ContentType
	}

	d.logger.Info("media downloaded",
		"bytes", len(data),
		"content_type", contentType,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return NewBuffer(data, contentType), nil
}

func isRetryable(err error) bool {
	if errors.Is(err, domain.ErrMediaTooLarge) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
