package media

import (
	"context"
	"fmt"

	"github.com/iconidentify/socialscope/internal/domain"
)

// Acquirer resolves a post URL to a stream and downloads it. Platforms without
// a registered resolver surface domain.ErrNoPlayableMedia so callers can skip
// the audio/video stages entirely.
type Acquirer struct {
	resolvers  map[domain.Platform]StreamResolver
	downloader *Downloader
}

func NewAcquirer(downloader *Downloader) *Acquirer {
	return &Acquirer{
		resolvers:  make(map[domain.Platform]StreamResolver),
		downloader: downloader,
	}
}

// Register installs a resolver for a platform, replacing any previous one.
func (a *Acquirer) Register(platform domain.Platform, resolver StreamResolver) {
	a.resolvers[platform] = resolver
}

// Acquire downloads the playable media behind a post URL into memory.
func (a *Acquirer) Acquire(ctx context.Context, platform domain.Platform, rawURL string) (*Buffer, error) {
	resolver, ok := a.resolvers[platform]
	if !ok {
		return nil, domain.ErrNoPlayableMedia
	}

	stream, err := resolver.Resolve(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("resolving %s stream: %w", platform, err)
	}

	return a.downloader.Fetch(ctx, stream)
}
