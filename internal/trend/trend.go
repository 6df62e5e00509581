// Package trend defines the trend catalog entity consumed by the
// matching pipeline. Trends are created and updated by an external
// curation process; the engine reads them, embeds their descriptive
// text, and never deletes them physically — retirement is a soft
// delete via IsActive so historical matches stay explainable.
package trend

import (
	"fmt"
	"strings"
	"time"

	"github.com/mantyhq/manty/internal/platform"
)

// Category classifies a trend. The set is fixed; curation tools reject
// anything outside it.
type Category string

const (
	CategoryLifestyle  Category = "lifestyle"
	CategoryFashion    Category = "fashion"
	CategoryBeauty     Category = "beauty"
	CategoryFood       Category = "food"
	CategoryTravel     Category = "travel"
	CategoryFitness    Category = "fitness"
	CategoryTechnology Category = "technology"
	CategoryArt        Category = "art"
	CategoryMusic      Category = "music"
	CategoryComedy     Category = "comedy"
	CategoryEducation  Category = "education"
	CategoryBusiness   Category = "business"
)

// Categories lists every valid trend category.
var Categories = []Category{
	CategoryLifestyle, CategoryFashion, CategoryBeauty, CategoryFood,
	CategoryTravel, CategoryFitness, CategoryTechnology, CategoryArt,
	CategoryMusic, CategoryComedy, CategoryEducation, CategoryBusiness,
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c Category) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// MoodColors maps mood labels to their representative hex color.
// Used when seeding trend colors and for display surfaces.
var MoodColors = map[string]string{
	"happy":      "#FFD700",
	"energetic":  "#FF6B35",
	"calm":       "#4A90E2",
	"peaceful":   "#7ED321",
	"mysterious": "#9013FE",
	"romantic":   "#E91E63",
	"nostalgic":  "#8D6E63",
	"dramatic":   "#212121",
}

// Trend is one tracked trend. Popularity is a non-negative prevalence
// scalar maintained by the curation process; higher means more
// prevalent. Embedding is populated lazily when the trend is indexed.
type Trend struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Category    Category      `json:"category"`
	Platforms   []platform.ID `json:"platforms"`
	Popularity  int           `json:"popularity"`
	Hashtags    []string      `json:"hashtags"`
	Colors      []string      `json:"colors"`
	Mood        string        `json:"mood"`
	Description string        `json:"description"`
	Embedding   []float32     `json:"embedding,omitempty"`
	IsActive    bool          `json:"isActive"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Validate checks the invariants the index relies on.
func (t *Trend) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trend id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("trend %s: name is required", t.ID)
	}
	if !ValidCategory(t.Category) {
		return fmt.Errorf("trend %s: unknown category %q", t.ID, t.Category)
	}
	if t.Popularity < 0 {
		return fmt.Errorf("trend %s: popularity must be non-negative, got %d", t.ID, t.Popularity)
	}
	for _, p := range t.Platforms {
		if !platform.Supported(p) {
			return fmt.Errorf("trend %s: unknown platform %q", t.ID, p)
		}
	}
	return nil
}

// EmbeddingText is the canonical textual projection of a trend used to
// compute its embedding. Field order is fixed so the same trend always
// produces the same text.
func (t *Trend) EmbeddingText() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString(" | ")
	sb.WriteString(string(t.Category))
	if t.Mood != "" {
		sb.WriteString(" | mood: ")
		sb.WriteString(t.Mood)
	}
	if t.Description != "" {
		sb.WriteString(" | ")
		sb.WriteString(t.Description)
	}
	if len(t.Hashtags) > 0 {
		sb.WriteString(" | ")
		sb.WriteString(strings.Join(t.Hashtags, " "))
	}
	return sb.String()
}
