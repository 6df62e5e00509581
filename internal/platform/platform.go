// Package platform holds the static constraint registry for supported
// social platforms: caption length limits, hashtag budgets, aspect
// ratios, and accepted media formats. The table is loaded once at
// process start and never mutated.
package platform

import (
	"sort"

	"github.com/mantyhq/manty/internal/fault"
)

// ID identifies a social platform.
type ID string

const (
	Instagram ID = "instagram"
	TikTok    ID = "tiktok"
	Facebook  ID = "facebook"
	YouTube   ID = "youtube"
	Twitter   ID = "twitter"
	Pinterest ID = "pinterest"
)

// Spec is the set of structural constraints a platform imposes on
// published content. Generated captions must satisfy MaxCaptionLength
// and MaxHashtags; RecommendedHashtags is guidance passed to the
// text-generation prompt, not a hard limit.
type Spec struct {
	Platform            ID       `json:"platform"`
	AspectRatios        []string `json:"aspectRatios"`
	MaxCaptionLength    int      `json:"maxCaptionLength"`
	MaxHashtags         int      `json:"maxHashtags"`
	RecommendedHashtags int      `json:"recommendedHashtags"`
	SupportedFormats    []string `json:"supportedFormats"`
}

var registry = map[ID]Spec{
	Instagram: {
		Platform:            Instagram,
		AspectRatios:        []string{"1:1", "4:5", "9:16"},
		MaxCaptionLength:    2200,
		MaxHashtags:         30,
		RecommendedHashtags: 11,
		SupportedFormats:    []string{"jpg", "png", "mp4", "mov"},
	},
	TikTok: {
		Platform:            TikTok,
		AspectRatios:        []string{"9:16"},
		MaxCaptionLength:    300,
		MaxHashtags:         100,
		RecommendedHashtags: 5,
		SupportedFormats:    []string{"mp4", "mov", "avi"},
	},
	Facebook: {
		Platform:            Facebook,
		AspectRatios:        []string{"16:9", "1:1", "4:5"},
		MaxCaptionLength:    63206,
		MaxHashtags:         30,
		RecommendedHashtags: 5,
		SupportedFormats:    []string{"jpg", "png", "mp4", "mov"},
	},
	// YouTube captions map to the video description field.
	YouTube: {
		Platform:            YouTube,
		AspectRatios:        []string{"16:9", "9:16"},
		MaxCaptionLength:    5000,
		MaxHashtags:         60,
		RecommendedHashtags: 15,
		SupportedFormats:    []string{"mp4", "mov", "avi", "wmv"},
	},
	Twitter: {
		Platform:            Twitter,
		AspectRatios:        []string{"16:9", "1:1"},
		MaxCaptionLength:    280,
		MaxHashtags:         10,
		RecommendedHashtags: 2,
		SupportedFormats:    []string{"jpg", "png", "gif", "mp4"},
	},
	Pinterest: {
		Platform:            Pinterest,
		AspectRatios:        []string{"2:3", "1:1"},
		MaxCaptionLength:    500,
		MaxHashtags:         20,
		RecommendedHashtags: 5,
		SupportedFormats:    []string{"jpg", "png", "mp4"},
	},
}

// Lookup returns the constraint spec for a platform. Unknown platforms
// are a hard failure; callers must fail fast rather than guess limits.
func Lookup(p ID) (Spec, error) {
	spec, ok := registry[p]
	if !ok {
		return Spec{}, &fault.UnsupportedPlatformError{Platform: string(p)}
	}
	return spec, nil
}

// Supported reports whether a platform has a registry entry.
func Supported(p ID) bool {
	_, ok := registry[p]
	return ok
}

// IDs returns all registered platform identifiers in sorted order.
func IDs() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
