package caption

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/mantyhq/manty/internal/assets"
	"github.com/mantyhq/manty/internal/jsonutil"
)

// DefaultTextModel is the model used for caption text generation.
const DefaultTextModel = "gemini-2.5-flash"

// captionTemperature keeps variants diverse. Generation is therefore
// non-deterministic; compliance is enforced downstream, not here.
const captionTemperature = 0.8

// GeminiGenerator implements TextGenerator over the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultTextModel
	}
	return &GeminiGenerator{client: client, model: model}
}

func (g *GeminiGenerator) Candidates(ctx context.Context, prompt string, n int) ([]string, error) {
	if g.client == nil {
		return nil, errors.New("gemini client not configured, set GEMINI_API_KEY")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.CaptionSystemPrompt}},
		},
		Temperature: genai.Ptr(float32(captionTemperature)),
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	log.Debug().
		Str("model", g.model).
		Int("prompt_length", len(prompt)).
		Int("requested", n).
		Msg("Starting Gemini API call for caption generation")

	callStart := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to generate captions from Gemini")
		return nil, err
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Gemini API response received for caption generation")

	candidates, err := jsonutil.Decode[[]string](responseText)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
