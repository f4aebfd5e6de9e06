package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/media"
	"github.com/iconidentify/socialscope/internal/scraper"
)

// Shared fakes for the service tests.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTasksConfig() config.TasksConfig {
	return config.TasksConfig{
		TTL:           time.Hour,
		MaxEntries:    100,
		SweepInterval: time.Minute,
	}
}

type fakeStore struct {
	mu      sync.Mutex
	results map[string]*domain.UnifiedDocument
	posts   map[string]*domain.CachedPost
	saveErr error
	postErr error
	saved   []*domain.UnifiedDocument
	savedID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		results: make(map[string]*domain.UnifiedDocument),
		posts:   make(map[string]*domain.CachedPost),
		savedID: "679a1b2c",
	}
}

func (s *fakeStore) SaveResult(ctx context.Context, doc *domain.UnifiedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.results[doc.TaskID] = doc
	s.saved = append(s.saved, doc)
	return nil
}

func (s *fakeStore) FindByTaskID(ctx context.Context, taskID domain.TaskID) (*domain.UnifiedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.results[string(taskID)]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *fakeStore) FindByContentID(ctx context.Context, platform domain.Platform, contentID string) (*domain.UnifiedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.results {
		if doc.Platform == string(platform) && doc.VideoInfo != nil && doc.VideoInfo.VideoID == contentID {
			return doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (s *fakeStore) GetCachedPost(ctx context.Context, shortcode string) (*domain.CachedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[shortcode]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return post, nil
}

func (s *fakeStore) SavePost(ctx context.Context, post *domain.CachedPost) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postErr != nil {
		return "", s.postErr
	}
	s.posts[post.Shortcode] = post
	return s.savedID, nil
}

type putCall struct {
	object      string
	contentType string
	data        []byte
}

type fakeBlobs struct {
	mu     sync.Mutex
	puts   []putCall
	putErr error
}

func (b *fakeBlobs) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts = append(b.puts, putCall{object: objectName, contentType: contentType, data: data})
	return nil
}

func (b *fakeBlobs) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "https://minio.test/presigned/" + objectName, nil
}

func (b *fakeBlobs) PublicURL(objectName string) string {
	return "http://minio.test/bucket/" + objectName
}

func (b *fakeBlobs) objects() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for _, p := range b.puts {
		names = append(names, p.object)
	}
	return names
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	read  []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, taskID domain.TaskID, media io.Reader) (string, error) {
	f.calls++
	f.read, _ = io.ReadAll(media)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeAnalyzer struct {
	summary      string
	sentiment    string
	summaryErr   error
	sentimentErr error
}

func (f *fakeAnalyzer) Summarize(ctx context.Context, text string) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeAnalyzer) ClassifySentiment(ctx context.Context, text string) (string, error) {
	return f.sentiment, f.sentimentErr
}

type fakeScraper struct {
	bundle domain.RawBundle
	err    error
	lastID domain.TaskID
}

func (f *fakeScraper) Scrape(ctx context.Context, rawURL string, taskID domain.TaskID) (domain.RawBundle, error) {
	f.lastID = taskID
	return f.bundle, f.err
}

func scraperRegistry(platform domain.Platform, s scraper.Scraper) *scraper.Registry {
	r := scraper.NewRegistry()
	r.Register(platform, s)
	return r
}

type fixedResolver struct {
	stream *media.Stream
	err    error
}

func (r *fixedResolver) Resolve(ctx context.Context, rawURL string) (*media.Stream, error) {
	return r.stream, r.err
}

type fakeFetcher struct {
	post *domain.CachedPost
	err  error
}

func (f *fakeFetcher) FetchPost(ctx context.Context, shortcode string) (*domain.CachedPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Hand out a copy so tests can assert against the original.
	post := *f.post
	return &post, nil
}

func bundleForYouTube(videoID string) domain.RawBundle {
	return domain.RawBundle{
		"video_info": map[string]any{
			"title":    "a title",
			"video_id": videoID,
		},
		"channel_info": map[string]any{"handle": "@ch"},
		"comments": map[string]any{
			"total": float64(1),
			"data":  []any{map[string]any{"author": "a", "text": "nice"}},
		},
	}
}
