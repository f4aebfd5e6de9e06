package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iconidentify/socialscope/internal/domain"
	"github.com/iconidentify/socialscope/internal/media"
	"github.com/iconidentify/socialscope/internal/repository"
)

// PostFetcher retrieves one Instagram post by shortcode, with media URLs
// still pointing at the platform's CDN.
type PostFetcher interface {
	FetchPost(ctx context.Context, shortcode string) (*domain.CachedPost, error)
}

// Instagram implements the direct-fetch flow: cache lookup, scrape on miss,
// mirror the media into the blob store, persist with refreshed cache stamps.
type Instagram struct {
	store      repository.DocumentStore
	blobs      repository.BlobStore
	fetcher    PostFetcher
	downloader *media.Downloader
	logger     *slog.Logger
}

func NewInstagram(store repository.DocumentStore, blobs repository.BlobStore, fetcher PostFetcher, downloader *media.Downloader, logger *slog.Logger) *Instagram {
	return &Instagram{
		store:      store,
		blobs:      blobs,
		fetcher:    fetcher,
		downloader: downloader,
		logger:     logger,
	}
}

// GetPostData returns the post behind an Instagram URL, served from cache
// when a fresh record exists.
func (s *Instagram) GetPostData(ctx context.Context, rawURL string) (*domain.CachedPost, error) {
	shortcode := domain.InstagramShortcode(rawURL)
	if shortcode == "" {
		return nil, fmt.Errorf("%w: no shortcode in %q", domain.ErrInvalidURL, rawURL)
	}
	logger := s.logger.With("shortcode", shortcode)

	cached, err := s.store.GetCachedPost(ctx, shortcode)
	if err == nil {
		logger.Info("cache hit")
		return cached, nil
	}
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	logger.Info("cache miss, fetching from instagram")
	post, err := s.fetcher.FetchPost(ctx, shortcode)
	if err != nil {
		return nil, fmt.Errorf("fetch post %s: %w", shortcode, err)
	}
	post.Shortcode = shortcode
	post.URL = rawURL

	// First save assigns the record id the object names derive from. If it
	// fails the client still gets the post, with platform CDN URLs.
	storedID, err := s.store.SavePost(ctx, post)
	if err != nil {
		logger.Warn("save failed, returning platform urls", "error", err)
		return post, nil
	}
	post.StoredID = storedID

	s.mirrorMedia(ctx, post, logger)

	if _, err := s.store.SavePost(ctx, post); err != nil {
		logger.Warn("url update save failed", "error", err)
	}
	return post, nil
}

// mirrorMedia copies the post's media into the blob store and rewrites the
// URLs in place. Each object is independent: one failed mirror keeps that
// URL on the platform CDN without affecting the others.
func (s *Instagram) mirrorMedia(ctx context.Context, post *domain.CachedPost, logger *slog.Logger) {
	id := post.StoredID

	sourceMedia := post.DisplayURL
	if post.IsVideo() && post.VideoURL != "" {
		sourceMedia = post.VideoURL
	}

	if mirrored, ok := s.mirror(ctx, sourceMedia,
		repository.MediaObjectName(id, post.MediaType),
		repository.MediaContentType(post.MediaType), logger); ok {
		post.DisplayURL = mirrored
		if post.IsVideo() {
			post.VideoURL = mirrored
		}
	}

	if post.IsVideo() {
		// Videos keep a separate still thumbnail.
		if mirrored, ok := s.mirror(ctx, post.ThumbnailURL,
			repository.ThumbObjectName(id), "image/jpeg", logger); ok {
			post.ThumbnailURL = mirrored
		}
	} else {
		post.ThumbnailURL = post.DisplayURL
	}

	if mirrored, ok := s.mirror(ctx, post.ProfilePicURL,
		repository.ProfileObjectName(id), "image/jpeg", logger); ok {
		post.ProfilePicURL = mirrored
	}
}

func (s *Instagram) mirror(ctx context.Context, sourceURL, objectName, contentType string, logger *slog.Logger) (string, bool) {
	if sourceURL == "" {
		return "", false
	}

	buf, err := s.downloader.Fetch(ctx, &media.Stream{URL: sourceURL, ContentType: contentType})
	if err != nil {
		logger.Warn("media download failed", "object", objectName, "error", err)
		return "", false
	}
	if err := s.blobs.Put(ctx, objectName, buf.Reader(), buf.Len(), contentType); err != nil {
		logger.Warn("media upload failed", "object", objectName, "error", err)
		return "", false
	}
	return s.blobs.PublicURL(objectName), true
}
