package domain

import (
	"strings"
)

// ContentID derives the normalized content identifier used for dedup from a
// source URL: the YouTube video id, Instagram shortcode, tweet id, or Reddit
// post id. Normalizing here keeps cache lookups stable across query-string
// and trailing-slash variants of the same post. Falls back to the cleaned URL
// when no identifier can be located.
func ContentID(platform Platform, rawURL string) string {
	clean := stripQuery(rawURL)

	switch platform {
	case PlatformYouTube:
		if id := youtubeVideoID(rawURL); id != "" {
			return id
		}
	case PlatformInstagram:
		if sc := InstagramShortcode(rawURL); sc != "" {
			return sc
		}
	case PlatformTwitter:
		if id := pathSegmentAfter(clean, "status"); id != "" {
			return id
		}
	case PlatformReddit:
		if id := pathSegmentAfter(clean, "comments"); id != "" {
			return id
		}
	}

	return strings.TrimRight(clean, "/")
}

// youtubeVideoID handles watch?v=, youtu.be short links, and embed URLs.
func youtubeVideoID(rawURL string) string {
	if rest, ok := cutAfter(rawURL, "youtu.be/"); ok {
		return firstSegment(rest)
	}
	if rest, ok := cutAfter(rawURL, "v="); ok {
		if i := strings.IndexByte(rest, '&'); i >= 0 {
			rest = rest[:i]
		}
		return firstSegment(rest)
	}
	if rest, ok := cutAfter(rawURL, "/embed/"); ok {
		return firstSegment(rest)
	}
	return ""
}

// InstagramShortcode extracts the shortcode from /p/, /reel/ and /reels/
// URLs, ignoring query parameters and trailing slashes.
func InstagramShortcode(rawURL string) string {
	clean := strings.Trim(stripQuery(rawURL), "/")
	parts := strings.Split(clean, "/")
	for i, part := range parts {
		switch part {
		case "p", "reel", "reels":
			if i+1 < len(parts) {
				return parts[i+1]
			}
		}
	}
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

func stripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func pathSegmentAfter(cleanURL, marker string) string {
	parts := strings.Split(strings.Trim(cleanURL, "/"), "/")
	for i, part := range parts {
		if part == marker && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func cutAfter(s, sep string) (string, bool) {
	_, after, ok := strings.Cut(s, sep)
	return after, ok
}

func firstSegment(s string) string {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		return s[:i]
	}
	return s
}
