// Package unify maps platform-specific scraper bundles into the canonical
// cross-platform document schema.
package unify

import (
	"time"
	"unicode/utf8"

	"github.com/iconidentify/socialscope/internal/domain"
)

// Transform shapes a raw scraper bundle into a unified document. Platforms
// without a dedicated transformer fall back to a generic document that keeps
// the bundle verbatim under raw_data. The analysis payload, when present,
// overlays the transcript-derived fields. Transform is pure; it never mutates
// the bundle.
func Transform(platform domain.Platform, bundle domain.RawBundle, analysis *domain.AnalysisPayload, now time.Time) *domain.UnifiedDocument {
	var doc *domain.UnifiedDocument
	switch platform {
	case domain.PlatformYouTube:
		doc = transformYouTube(bundle)
	case domain.PlatformTwitter:
		doc = transformTwitter(bundle)
	case domain.PlatformInstagram:
		doc = transformInstagram(bundle)
	case domain.PlatformReddit:
		doc = transformReddit(bundle)
	default:
		doc = &domain.UnifiedDocument{
			Platform: "unknown",
			RawData:  bundle.Clone(),
		}
	}

	doc.ScrapedAt = now.UTC()

	if analysis != nil {
		doc.Transcription = analysis.Transcript
		doc.Summary = analysis.Summary
		doc.AnalysisResults = &domain.AnalysisResults{Sentiment: analysis.Sentiment}
	}
	return doc
}

func transformYouTube(bundle domain.RawBundle) *domain.UnifiedDocument {
	vInfo := bundle.Map("video_info")
	cInfo := bundle.Map("channel_info")
	return &domain.UnifiedDocument{
		Platform: string(domain.PlatformYouTube),
		VideoInfo: &domain.VideoInfo{
			Title:        vInfo.String("title"),
			Description:  vInfo.String("description"),
			Likes:        vInfo.Int("likes"),
			Views:        vInfo.Int("views"),
			Duration:     vInfo.String("duration"),
			UploadDate:   vInfo.String("upload_date"),
			CommentCount: vInfo.Int("comment_count"),
			VideoID:      vInfo.String("video_id"),
		},
		ChannelInfo: &domain.ChannelInfo{
			Name:            cInfo.String("name"),
			Handle:          cInfo.String("handle"),
			SubscriberCount: cInfo.Int("subscriber_count"),
			VideoCount:      cInfo.Int("video_count"),
			Description:     cInfo.String("description"),
		},
		Comments:       comments(bundle),
		MinioVideoPath: bundle.String("minio_video_path"),
	}
}

func transformTwitter(bundle domain.RawBundle) *domain.UnifiedDocument {
	vInfo := bundle.Map("video_info")
	if vInfo == nil {
		vInfo = bundle
	}

	title := vInfo.String("title")
	if title == "" {
		title = truncate(bundle.String("tweet_text"), 50)
	}
	videoID := vInfo.String("video_id")
	if videoID == "" {
		videoID = bundle.String("tweet_id")
	}

	return &domain.UnifiedDocument{
		Platform: string(domain.PlatformTwitter),
		VideoInfo: &domain.VideoInfo{
			Title:       title,
			Description: bundle.String("tweet_text"),
			VideoID:     videoID,
		},
		ChannelInfo: &domain.ChannelInfo{
			Handle: bundle.Map("profile_info").String("username"),
		},
		Comments:       comments(bundle),
		MinioVideoPath: bundle.String("minio_video_path"),
	}
}

func transformInstagram(bundle domain.RawBundle) *domain.UnifiedDocument {
	vInfo := bundle.Map("video_info")
	if vInfo == nil {
		vInfo = bundle.Map("post_metrics")
	}

	videoID := vInfo.String("video_id")
	if videoID == "" {
		videoID = vInfo.String("shortcode")
	}

	return &domain.UnifiedDocument{
		Platform:  string(domain.PlatformInstagram),
		VideoInfo: &domain.VideoInfo{VideoID: videoID},
		ChannelInfo: &domain.ChannelInfo{
			Handle: bundle.Map("creators_metrics").String("username"),
		},
		Comments:       comments(bundle),
		MinioVideoPath: bundle.String("minio_video_path"),
	}
}

func transformReddit(bundle domain.RawBundle) *domain.UnifiedDocument {
	vInfo := bundle.Map("video_info")
	if vInfo == nil {
		vInfo = bundle.Map("post_details")
	}

	videoID := vInfo.String("video_id")
	if videoID == "" {
		videoID = vInfo.String("post_id")
	}

	return &domain.UnifiedDocument{
		Platform:  string(domain.PlatformReddit),
		VideoInfo: &domain.VideoInfo{VideoID: videoID},
		ChannelInfo: &domain.ChannelInfo{
			Handle: bundle.Map("creators_details").String("username"),
		},
		Comments:       comments(bundle),
		MinioVideoPath: bundle.String("minio_video_path"),
	}
}

// comments normalizes the bundle's comment block, capping the sample at
// domain.MaxComments while keeping the platform's reported total.
func comments(bundle domain.RawBundle) *domain.CommentSet {
	block := bundle.Map("comments")

	set := &domain.CommentSet{Data: []domain.Comment{}}
	if block == nil {
		return set
	}

	items := block.Slice("data")
	for _, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := domain.RawBundle(raw)
		set.Data = append(set.Data, domain.Comment{
			Author:    c.String("author"),
			Text:      c.String("text"),
			Likes:     c.Int("likes"),
			Sentiment: c.String("sentiment"),
		})
		if len(set.Data) == domain.MaxComments {
			break
		}
	}

	set.Total = block.Int("total")
	if set.Total == 0 {
		set.Total = int64(len(items))
	}
	return set
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
