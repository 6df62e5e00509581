package analysis

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Analyzer runs the full analysis flow for one media item: call the
// vision model, validate the result, and stamp it with an identity.
type Analyzer struct {
	vision Vision
}

func NewAnalyzer(vision Vision) *Analyzer {
	return &Analyzer{vision: vision}
}

// Analyze describes the media at source and returns a validated
// analysis. The returned MediaID is freshly assigned; pass mediaID
// through AnalyzeWithID to preserve an external identity.
func (a *Analyzer) Analyze(ctx context.Context, source string, mediaType MediaType) (MediaAnalysis, error) {
	return a.AnalyzeWithID(ctx, uuid.NewString(), source, mediaType)
}

// AnalyzeWithID is Analyze with a caller-supplied media identity.
func (a *Analyzer) AnalyzeWithID(ctx context.Context, mediaID, source string, mediaType MediaType) (MediaAnalysis, error) {
	result, err := a.vision.Describe(ctx, source, mediaType)
	if err != nil {
		return MediaAnalysis{}, err
	}
	result.MediaID = mediaID
	if err := result.Validate(); err != nil {
		log.Debug().Err(err).Str("media_id", mediaID).Msg("Model returned invalid analysis")
		return MediaAnalysis{}, err
	}

	log.Info().
		Str("media_id", mediaID).
		Str("mood", result.Mood).
		Str("scene", result.SceneType).
		Float64("mood_confidence", result.MoodConfidence).
		Msg("Media analysis complete")
	return result, nil
}
