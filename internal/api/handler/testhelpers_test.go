package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockScrapeService is a test implementation of ScrapeService.
type mockScrapeService struct {
	startTask     *domain.Task
	startExisting *domain.UnifiedDocument
	startErr      error
	startedWith   []string

	result    *service.Result
	resultErr error

	videoURL    string
	videoURLErr error
}

func (m *mockScrapeService) Start(ctx context.Context, platform domain.Platform, url string) (*domain.Task, *domain.UnifiedDocument, error) {
	m.startedWith = append(m.startedWith, string(platform)+" "+url)
	if m.startErr != nil {
		return nil, nil, m.startErr
	}
	if m.startExisting != nil {
		return nil, m.startExisting, nil
	}
	return m.startTask, nil, nil
}

func (m *mockScrapeService) Result(ctx context.Context, id domain.TaskID) (*service.Result, error) {
	if m.resultErr != nil {
		return nil, m.resultErr
	}
	return m.result, nil
}

func (m *mockScrapeService) VideoURL(ctx context.Context, id domain.TaskID) (string, error) {
	if m.videoURLErr != nil {
		return "", m.videoURLErr
	}
	return m.videoURL, nil
}

// mockPostService is a test implementation of PostService.
type mockPostService struct {
	post *domain.CachedPost
	err  error
}

func (m *mockPostService) GetPostData(ctx context.Context, rawURL string) (*domain.CachedPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.post, nil
}

// mockPinger is a test implementation of Pinger.
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

// mockCounter is a test implementation of Counter.
type mockCounter struct {
	n int
}

func (m *mockCounter) Len() int {
	return m.n
}
