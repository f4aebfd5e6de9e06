// Package scraper fetches raw post metadata from platform scrapers.
package scraper

import (
	"context"
	"fmt"
	"sync"

	"github.com/iconidentify/socialscope/internal/domain"
)

// Scraper fetches raw metadata for a post URL. Implementations return the
// provider's document as-is; shaping into the unified schema happens later.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string, taskID domain.TaskID) (domain.RawBundle, error)
}

// Registry maps platforms to their scrapers.
type Registry struct {
	scrapers map[domain.Platform]Scraper
}

func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[domain.Platform]Scraper)}
}

// Register installs a scraper for a platform, replacing any previous one.
func (r *Registry) Register(platform domain.Platform, s Scraper) {
	r.scrapers[platform] = s
}

// Lookup returns the scraper for a platform.
func (r *Registry) Lookup(platform domain.Platform) (Scraper, error) {
	s, ok := r.scrapers[platform]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for platform %s: %w", platform, domain.ErrUnknownPlatform)
	}
	return s, nil
}

// Serialized wraps a Scraper so only one scrape runs at a time. Upstream
// providers rate-limit aggressively; concurrent runs against the same
// provider trade throughput for bans.
type Serialized struct {
	mu    sync.Mutex
	inner Scraper
}

func Serialize(inner Scraper) *Serialized {
	return &Serialized{inner: inner}
}

func (s *Serialized) Scrape(ctx context.Context, rawURL string, taskID domain.TaskID) (domain.RawBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Scrape(ctx, rawURL, taskID)
}
