package domain

import "time"

// MaxComments bounds how many comments a unified document carries.
const MaxComments = 25

// Comment is one normalized comment in a unified document.
type Comment struct {
	Author    string `bson:"author" json:"author"`
	Text      string `bson:"text" json:"text"`
	Likes     int64  `bson:"likes" json:"likes"`
	Sentiment string `bson:"sentiment,omitempty" json:"sentiment,omitempty"`
}

// CommentSet carries the comment sample plus the platform's reported total.
type CommentSet struct {
	Total int64     `bson:"total" json:"total"`
	Data  []Comment `bson:"data" json:"data"`
}

// VideoInfo holds post-level metadata. YouTube fills every field; the other
// platforms fill the subset their bundles carry.
type VideoInfo struct {
	Title        string `bson:"title,omitempty" json:"title,omitempty"`
	Description  string `bson:"description,omitempty" json:"description,omitempty"`
	Likes        int64  `bson:"likes,omitempty" json:"likes,omitempty"`
	Views        int64  `bson:"views,omitempty" json:"views,omitempty"`
	Duration     string `bson:"duration,omitempty" json:"duration,omitempty"`
	UploadDate   string `bson:"upload_date,omitempty" json:"upload_date,omitempty"`
	CommentCount int64  `bson:"comment_count,omitempty" json:"comment_count,omitempty"`
	VideoID      string `bson:"video_id,omitempty" json:"video_id,omitempty"`
}

// ChannelInfo holds creator-level metadata.
type ChannelInfo struct {
	Name            string `bson:"name,omitempty" json:"name,omitempty"`
	Handle          string `bson:"handle,omitempty" json:"handle,omitempty"`
	SubscriberCount int64  `bson:"subscriber_count,omitempty" json:"subscriber_count,omitempty"`
	VideoCount      int64  `bson:"video_count,omitempty" json:"video_count,omitempty"`
	Description     string `bson:"description,omitempty" json:"description,omitempty"`
}

// AnalysisResults carries the LLM classification output.
type AnalysisResults struct {
	Sentiment *string `bson:"sentiment" json:"sentiment"`
}

// AnalysisPayload bundles the transcript-derived artifacts handed to the
// schema unifier. Nil pointers mean the stage was skipped or failed softly.
type AnalysisPayload struct {
	Transcript *string
	Summary    *string
	Sentiment  *string
}

// UnifiedDocument is the canonical cross-platform result record persisted to
// the document store.
type UnifiedDocument struct {
	Platform        string           `bson:"platform" json:"platform"`
	ScrapedAt       time.Time        `bson:"scraped_at" json:"scraped_at"`
	VideoInfo       *VideoInfo       `bson:"video_info,omitempty" json:"video_info,omitempty"`
	ChannelInfo     *ChannelInfo     `bson:"channel_info,omitempty" json:"channel_info,omitempty"`
	Comments        *CommentSet      `bson:"comments,omitempty" json:"comments,omitempty"`
	Transcription   *string          `bson:"transcription,omitempty" json:"transcription,omitempty"`
	Summary         *string          `bson:"summary,omitempty" json:"summary,omitempty"`
	AnalysisResults *AnalysisResults `bson:"analysis_results,omitempty" json:"analysis_results,omitempty"`
	MinioVideoPath  string           `bson:"minio_video_path,omitempty" json:"minio_video_path,omitempty"`
	RawData         RawBundle        `bson:"raw_data,omitempty" json:"raw_data,omitempty"`
	TaskID          string           `bson:"task_id,omitempty" json:"task_id,omitempty"`
	Status          string           `bson:"status,omitempty" json:"status,omitempty"`
}

// CachedPost is a shortcode-keyed record on the Instagram direct-fetch path.
// Fields mirror what the scraper returns plus the cache bookkeeping stamps.
type CachedPost struct {
	Shortcode     string    `bson:"shortcode" json:"shortcode"`
	URL           string    `bson:"url" json:"url"`
	Username      string    `bson:"username" json:"username"`
	FullName      string    `bson:"full_name" json:"full_name"`
	Bio           string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Followers     int64     `bson:"followers" json:"followers"`
	Following     int64     `bson:"following" json:"following"`
	TotalPosts    int64     `bson:"total_posts" json:"total_posts"`
	IsVerified    bool      `bson:"is_verified" json:"is_verified"`
	Likes         int64     `bson:"likes" json:"likes"`
	CommentsCount int64     `bson:"comments_count" json:"comments_count"`
	MediaType     string    `bson:"media_type" json:"media_type"`
	Caption       string    `bson:"caption,omitempty" json:"caption,omitempty"`
	PublishDate   string    `bson:"publish_date,omitempty" json:"publish_date,omitempty"`
	Hashtags      []string  `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	VideoViews    int64     `bson:"video_view_count" json:"video_view_count"`
	DisplayURL    string    `bson:"display_url,omitempty" json:"display_url,omitempty"`
	ThumbnailURL  string    `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	VideoURL      string    `bson:"video_url,omitempty" json:"video_url,omitempty"`
	ProfilePicURL string    `bson:"profile_pic_url,omitempty" json:"profile_pic_url,omitempty"`
	StoredID      string    `bson:"stored_id,omitempty" json:"stored_id,omitempty"`
	// Cache stamps are store-internal and never returned to clients.
	FetchedAt   time.Time `bson:"fetched_at" json:"-"`
	CacheExpiry time.Time `bson:"cache_expiry" json:"-"`
}

// IsVideo reports whether the cached post's media is a video or reel.
func (p *CachedPost) IsVideo() bool {
	switch p.MediaType {
	case "Video", "Video/Reel", "video", "video/reel":
		return true
	}
	return false
}

// Expired reports whether the cache record is stale at the given instant.
func (p *CachedPost) Expired(now time.Time) bool {
	return !p.CacheExpiry.IsZero() && now.After(p.CacheExpiry)
}
