// Package whisper talks to a self-hosted Whisper transcription service.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/retry"
)

// Client transcribes audio/video content.
type Client interface {
	Transcribe(ctx context.Context, taskID domain.TaskID, media io.Reader) (string, error)
}

// Config for creating a new transcription client.
type Config struct {
	URL            string
	ConnectTimeout time.Duration // dial deadline
	ReadTimeout    time.Duration // whole-request deadline; transcription is slow
	MaxRetries     int
	RetryDelay     time.Duration
}

// HTTPClient implements Client against the service's multipart endpoint.
type HTTPClient struct {
	url        string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
}

// NewClient creates a transcription client. Connect and read deadlines are
// split because establishing a connection should fail fast while a long video
// can legitimately take many minutes to transcribe.
func NewClient(cfg Config) *HTTPClient {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 15 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 20 * time.Minute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &HTTPClient{
		url:        cfg.URL,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext: dialer.DialContext,
			},
		},
	}
}

// transcriptionResponse accepts both field spellings the service is known to
// emit depending on its version.
type transcriptionResponse struct {
	Transcription string `json:"transcription"`
	Text          string `json:"text"`
}

func (r *transcriptionResponse) transcript() string {
	if r.Transcription != "" {
		return r.Transcription
	}
	return r.Text
}

// Transcribe uploads the media as a multipart file and returns the transcript.
// Gateway errors (502/503/504) are retried; anything else fails immediately.
// An empty transcript is an error, the pipeline cannot analyze silence.
func (c *HTTPClient) Transcribe(ctx context.Context, taskID domain.TaskID, media io.Reader) (string, error) {
	body, contentType, err := buildMultipart(taskID, media)
	if err != nil {
		return "", err
	}

	retryCfg := retry.Config{
		MaxAttempts:   c.maxRetries + 1,
		InitialDelay:  c.retryDelay,
		MaxDelay:      c.retryDelay * 8,
		BackoffFactor: 2,
	}

	text, err := retry.DoWithCheck(ctx, retryCfg, func() (string, error) {
		return c.transcribeOnce(ctx, body, contentType)
	}, isGatewayError)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyTranscript
	}
	return text, nil
}

func buildMultipart(taskID domain.TaskID, media io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fmt.Sprintf("video_%s.mp4", taskID))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, media); err != nil {
		return nil, "", fmt.Errorf("copy media: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func (c *HTTPClient) transcribeOnce(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return result.transcript(), nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("transcription service error (status %d): %s", e.code, e.body)
}

func isGatewayError(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
