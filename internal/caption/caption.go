// Package caption produces platform-ready caption variants for analyzed
// media. Generation is delegated to a text model; constraint compliance
// is enforced here, after the fact, so a misbehaving model can never
// leak an over-limit caption to a publishing surface.
package caption

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mantyhq/manty/internal/platform"
)

// Tone constrains the voice of generated captions.
type Tone string

const (
	ToneCasual        Tone = "casual"
	ToneProfessional  Tone = "professional"
	TonePlayful       Tone = "playful"
	ToneInspirational Tone = "inspirational"
	TonePromotional   Tone = "promotional"
)

// Tones lists every supported tone.
var Tones = []Tone{ToneCasual, ToneProfessional, TonePlayful, ToneInspirational, TonePromotional}

// ValidTone reports whether t is a known tone.
func ValidTone(t Tone) bool {
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}

// Caption is one accepted caption variant. Immutable once returned;
// CharacterCount counts runes, matching how platforms count "characters".
type Caption struct {
	ID              string      `json:"id"`
	MediaID         string      `json:"mediaId"`
	Platform        platform.ID `json:"platform"`
	Text            string      `json:"text"`
	Hashtags        []string    `json:"hashtags"`
	Tone            Tone        `json:"tone"`
	CharacterCount  int         `json:"characterCount"`
	EngagementScore float64     `json:"engagementScore,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Result is the outcome of one generation request. Shortfall is the
// number of requested captions that could not be produced within the
// retry budget; zero means the request was fully satisfied.
type Result struct {
	Captions  []Caption `json:"captions"`
	Shortfall int       `json:"shortfall,omitempty"`
}

var hashtagRe = regexp.MustCompile(`#[A-Za-z0-9_]+`)

// ExtractHashtags returns the hashtags in text, in order of appearance.
func ExtractHashtags(text string) []string {
	return hashtagRe.FindAllString(text, -1)
}

// conform deterministically trims a raw candidate to the platform's
// limits: excess hashtags are dropped from the end first, then the text
// is truncated at a word boundary. Returns ok=false when no compliant
// caption can be derived (e.g. a single unbreakable over-long token),
// in which case the candidate is discarded rather than mangled.
func conform(text string, spec platform.Spec) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	text = dropExcessHashtags(text, spec.MaxHashtags)

	if utf8.RuneCountInString(text) > spec.MaxCaptionLength {
		truncated, ok := truncateAtWord(text, spec.MaxCaptionLength)
		if !ok {
			return "", false
		}
		// Truncation can reopen the hashtag budget question only by
		// removing hashtags, never adding them, so one pass suffices.
		text = truncated
	}

	if text == "" || len(ExtractHashtags(text)) > spec.MaxHashtags {
		return "", false
	}
	return text, true
}

// dropExcessHashtags removes hashtags beyond max, starting from the last
// occurrence. Non-hashtag text is untouched.
func dropExcessHashtags(text string, max int) string {
	locs := hashtagRe.FindAllStringIndex(text, -1)
	for len(locs) > max {
		last := locs[len(locs)-1]
		before := strings.TrimRight(text[:last[0]], " \t\n")
		text = before + text[last[1]:]
		locs = hashtagRe.FindAllStringIndex(text, -1)
	}
	return strings.TrimSpace(text)
}

// truncateAtWord cuts text to at most limit runes, ending on a word
// boundary. A first word longer than the limit cannot be cut cleanly,
// so the function reports failure instead.
func truncateAtWord(text string, limit int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, true
	}
	cut := string(runes[:limit])
	idx := strings.LastIndexAny(cut, " \t\n")
	if idx <= 0 {
		return "", false
	}
	out := strings.TrimRight(cut[:idx], " \t\n.,;:!?-")
	if out == "" {
		return "", false
	}
	return out, true
}
