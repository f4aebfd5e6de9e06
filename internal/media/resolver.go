package media

import (
	"context"
	"fmt"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/iconidentify/socialscope/internal/domain"
)

// Stream is a resolved, directly-downloadable media stream.
type Stream struct {
	URL         string
	ContentType string
	Title       string
}

// StreamResolver turns a post URL into a downloadable stream URL. Resolvers
// return domain.ErrNoPlayableMedia when the post has no audio/video track,
// which lets the pipeline skip the download, transcription and upload stages
// instead of failing the task.
type StreamResolver interface {
	Resolve(ctx context.Context, rawURL string) (*Stream, error)
}

// YouTubeResolver resolves watch URLs through the YouTube player API.
type YouTubeResolver struct {
	client ytdl.Client
}

func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{client: ytdl.Client{}}
}

func (r *YouTubeResolver) Resolve(ctx context.Context, rawURL string) (*Stream, error) {
	video, err := r.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("getting video metadata: %w", err)
	}

	format := pickFormat(video.Formats)
	if format == nil {
		return nil, domain.ErrNoPlayableMedia
	}

	streamURL, err := r.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("resolving stream url: %w", err)
	}

	contentType := format.MimeType
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return &Stream{URL: streamURL, ContentType: contentType, Title: video.Title}, nil
}

// pickFormat selects the highest-bitrate progressive MP4 format that carries
// an audio track. Adaptive video-only formats are useless for transcription.
func pickFormat(formats ytdl.FormatList) *ytdl.Format {
	var best *ytdl.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "video/mp4") {
			continue
		}
		if f.AudioChannels == 0 {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}
