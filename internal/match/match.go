// Package match ranks trends against analyzed media by embedding
// similarity. Matching is read-only over the trend index and
// deterministic for a given index state: the same analysis always
// yields the same ordered matches.
package match

import (
	"sort"

	"github.com/mantyhq/manty/internal/index"
)

// Confidence tier boundaries for match scores.
const (
	TierHigh   = 0.8
	TierMedium = 0.6
	TierLow    = 0.4
)

// Tier labels a score bucket.
type Tier string

const (
	High   Tier = "high"
	Medium Tier = "medium"
	Low    Tier = "low"
)

// TierFor buckets a normalized score.
func TierFor(score float64) Tier {
	switch {
	case score >= TierHigh:
		return High
	case score >= TierMedium:
		return Medium
	default:
		return Low
	}
}

// ReasonCatalog maps score tiers to human-readable compatibility
// reasons. It is configuration, not logic: swap the catalog to localize
// or rephrase without touching the matcher.
type ReasonCatalog map[Tier][]string

// DefaultReasons is the stock English catalog.
var DefaultReasons = ReasonCatalog{
	High:   {"Excellent mood match", "Perfect color palette alignment", "Strong visual similarity"},
	Medium: {"Good thematic match", "Similar visual elements", "Complementary mood"},
	Low:    {"Basic compatibility", "Some shared elements"},
}

// For returns the reasons for a score. The returned slice is a copy so
// callers cannot mutate the catalog.
func (c ReasonCatalog) For(score float64) []string {
	reasons := c[TierFor(score)]
	out := make([]string, len(reasons))
	copy(out, reasons)
	return out
}

// Match is one ranked trend for a piece of media. Score is normalized
// to [0, 1].
type Match struct {
	TrendID              string         `json:"trendId"`
	Score                float64        `json:"score"`
	CompatibilityReasons []string       `json:"compatibilityReasons"`
	Meta                 index.Metadata `json:"metadata"`
}

// rank orders matches for presentation: score descending, then
// popularity descending, then trend ID ascending. The final tiebreak
// makes the ordering total, so repeated queries agree byte for byte.
func rank(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Meta.Popularity != matches[j].Meta.Popularity {
			return matches[i].Meta.Popularity > matches[j].Meta.Popularity
		}
		return matches[i].TrendID < matches[j].TrendID
	})
}
