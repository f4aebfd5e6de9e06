package scraper

import (
	"context"
	"fmt"

	"github.com/iconidentify/socialscope/internal/domain"
)

// InstagramFetcher resolves single posts by shortcode through a scraper. It
// backs the direct-fetch endpoint, which works with shortcodes rather than
// task IDs.
type InstagramFetcher struct {
	scraper Scraper
}

func NewInstagramFetcher(s Scraper) *InstagramFetcher {
	return &InstagramFetcher{scraper: s}
}

// FetchPost scrapes one post and maps the provider bundle onto the cached
// post shape. Creator fields live either at the top level or nested under
// "owner" depending on the provider's schema version.
func (f *InstagramFetcher) FetchPost(ctx context.Context, shortcode string) (*domain.CachedPost, error) {
	postURL := fmt.Sprintf("https://www.instagram.com/p/%s/", shortcode)

	bundle, err := f.scraper.Scrape(ctx, postURL, domain.TaskID(shortcode))
	if err != nil {
		return nil, err
	}

	owner := bundle.Map("owner")
	if owner == nil {
		owner = bundle
	}

	post := &domain.CachedPost{
		Shortcode:     bundle.String("shortCode"),
		URL:           bundle.String("url"),
		Username:      firstString(bundle.String("ownerUsername"), owner.String("username")),
		FullName:      firstString(bundle.String("ownerFullName"), owner.String("fullName")),
		Bio:           owner.String("biography"),
		Followers:     owner.Int("followersCount"),
		Following:     owner.Int("followsCount"),
		TotalPosts:    owner.Int("postsCount"),
		IsVerified:    boolField(owner, "verified"),
		Likes:         bundle.Int("likesCount"),
		CommentsCount: bundle.Int("commentsCount"),
		MediaType:     mediaType(bundle.String("type")),
		Caption:       bundle.String("caption"),
		PublishDate:   bundle.String("timestamp"),
		Hashtags:      stringSlice(bundle.Slice("hashtags"), 5),
		VideoViews:    bundle.Int("videoViewCount"),
		DisplayURL:    bundle.String("displayUrl"),
		ThumbnailURL:  bundle.String("displayUrl"),
		VideoURL:      bundle.String("videoUrl"),
		ProfilePicURL: firstString(bundle.String("ownerProfilePicUrl"), owner.String("profilePicUrl")),
	}
	if post.Shortcode == "" {
		post.Shortcode = shortcode
	}
	if post.Caption == "" {
		post.Caption = "No caption"
	}
	return post, nil
}

func mediaType(providerType string) string {
	switch providerType {
	case "Video":
		return "Video/Reel"
	default:
		return "Image"
	}
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolField(b domain.RawBundle, key string) bool {
	v, _ := b[key].(bool)
	return v
}

func stringSlice(items []any, max int) []string {
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
