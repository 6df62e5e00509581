package caption

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mantyhq/manty/internal/analysis"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/match"
	"github.com/mantyhq/manty/internal/metrics"
	"github.com/mantyhq/manty/internal/platform"
)

const (
	// DefaultCount is the number of caption variants produced when the
	// caller does not ask for a specific count.
	DefaultCount = 3

	// maxAttempts bounds regeneration when candidates keep failing
	// post-validation.
	maxAttempts = 3
)

// TextGenerator produces raw caption candidates from a prompt. Returned
// strings are unvalidated model output.
type TextGenerator interface {
	Candidates(ctx context.Context, prompt string, n int) ([]string, error)
}

// Generator turns media analyses into constraint-compliant captions.
type Generator struct {
	text TextGenerator
}

func NewGenerator(text TextGenerator) *Generator {
	return &Generator{text: text}
}

// Generate produces up to count caption variants for the platform. Every
// returned caption satisfies the platform's character and hashtag
// limits. When fewer than count compliant captions can be produced
// within the retry budget, the partial result is returned together with
// a ConstraintError carrying the shortfall.
func (g *Generator) Generate(
	ctx context.Context,
	a *analysis.MediaAnalysis,
	p platform.ID,
	tone Tone,
	trendContext []match.Match,
	count int,
) (Result, error) {
	spec, err := platform.Lookup(p)
	if err != nil {
		return Result{}, err
	}
	if !ValidTone(tone) {
		return Result{}, fmt.Errorf("unknown tone %q", tone)
	}
	if count < 1 {
		count = DefaultCount
	}

	rec := metrics.ForOperation("CaptionGeneration")
	rec.Dimension("Platform", string(p))
	defer rec.Flush()
	start := time.Now()

	prompt := buildPrompt(a, p, spec, tone, trendContext, count)

	var accepted []Caption
	now := time.Now().UTC()
	for attempt := 1; attempt <= maxAttempts && len(accepted) < count; attempt++ {
		need := count - len(accepted)
		log.Debug().
			Int("attempt", attempt).
			Int("need", need).
			Str("platform", string(p)).
			Msg("Requesting caption candidates")

		candidates, err := g.text.Candidates(ctx, prompt, need)
		if err != nil {
			rec.Count("GenerationFailure")
			return Result{}, err
		}

		for _, raw := range candidates {
			text, ok := conform(raw, spec)
			if !ok {
				rec.Count("CandidateDiscarded")
				continue
			}
			if isDuplicate(accepted, text) {
				continue
			}
			accepted = append(accepted, Caption{
				ID:             uuid.NewString(),
				MediaID:        a.MediaID,
				Platform:       p,
				Text:           text,
				Hashtags:       ExtractHashtags(text),
				Tone:           tone,
				CharacterCount: utf8.RuneCountInString(text),
				CreatedAt:      now,
			})
			if len(accepted) == count {
				break
			}
		}
	}

	rec.Metric("CaptionsProduced", float64(len(accepted)), metrics.UnitCount)
	rec.Latency("GenerationLatency", time.Since(start))

	result := Result{Captions: accepted, Shortfall: count - len(accepted)}
	if result.Shortfall > 0 {
		log.Warn().
			Int("requested", count).
			Int("produced", len(accepted)).
			Str("platform", string(p)).
			Msg("Caption generation fell short of requested count")
		return result, &fault.ConstraintError{Platform: string(p), Requested: count, Produced: len(accepted)}
	}

	log.Info().
		Int("count", len(accepted)).
		Str("platform", string(p)).
		Str("tone", string(tone)).
		Msg("Caption generation complete")
	return result, nil
}

func isDuplicate(accepted []Caption, text string) bool {
	for _, c := range accepted {
		if strings.EqualFold(c.Text, text) {
			return true
		}
	}
	return false
}

// buildPrompt assembles the generation request. Markdown sections keep
// the structure legible in logged prompts.
func buildPrompt(
	a *analysis.MediaAnalysis,
	p platform.ID,
	spec platform.Spec,
	tone Tone,
	trendContext []match.Match,
	count int,
) string {
	hashtagTarget := spec.RecommendedHashtags
	if hashtagTarget > spec.MaxHashtags {
		hashtagTarget = spec.MaxHashtags
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d caption candidates for %s.\n\n", count, p)

	sb.WriteString("## Constraints\n")
	fmt.Fprintf(&sb, "- Maximum length: %d characters, counting everything\n", spec.MaxCaptionLength)
	fmt.Fprintf(&sb, "- Hashtags: at most %d, at the end of the caption\n", hashtagTarget)
	fmt.Fprintf(&sb, "- Tone: %s\n\n", tone)

	sb.WriteString("## Visual analysis\n")
	fmt.Fprintf(&sb, "- %s\n", a.ProjectionText())
	if len(a.ColorPalette) > 0 {
		fmt.Fprintf(&sb, "- Dominant colors: %s\n", strings.Join(a.ColorPalette, ", "))
	}
	sb.WriteString("\n")

	if len(trendContext) > 0 {
		sb.WriteString("## Matching trends\n")
		for i, m := range trendContext {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "- %s (%s)", m.Meta.Name, m.Meta.Category)
			if len(m.Meta.Hashtags) > 0 {
				fmt.Fprintf(&sb, ", hashtags: %s", strings.Join(m.Meta.Hashtags, " "))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
