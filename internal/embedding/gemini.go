package embedding

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/metrics"
)

// DefaultGeminiModel is the default Gemini embedding model.
const DefaultGeminiModel = "text-embedding-004"

// GeminiEmbedder computes embeddings through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGeminiEmbedder creates a Gemini-backed embedder. Empty model and
// zero dims fall back to DefaultGeminiModel and DefaultDims.
func NewGeminiEmbedder(client *genai.Client, model string, dims int) *GeminiEmbedder {
	if model == "" {
		model = DefaultGeminiModel
	}
	if dims <= 0 {
		dims = DefaultDims
	}
	return &GeminiEmbedder{client: client, model: model, dims: dims}
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	start := time.Now()
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(e.dims)),
	})
	elapsed := time.Since(start)

	m := metrics.ForOperation("embed").
		Dimension("Provider", "gemini").
		Latency("EmbedApiLatencyMs", elapsed).
		Count("EmbedApiCalls")
	if err != nil {
		m.Count("EmbedApiErrors")
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Str("model", e.model).Dur("duration", elapsed).Msg("Gemini EmbedContent failed")
		return nil, &fault.EmbeddingError{Model: e.model, Reason: "remote call failed", Err: err}
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, &fault.EmbeddingError{Model: e.model, Reason: "empty embedding response"}
	}

	vec := resp.Embeddings[0].Values
	if err := CheckDims(vec, e.dims, e.model); err != nil {
		return nil, err
	}

	log.Debug().
		Str("model", e.model).
		Int("dims", len(vec)).
		Int("text_length", len(text)).
		Dur("duration", elapsed).
		Msg("Embedding computed")
	return vec, nil
}

func (e *GeminiEmbedder) Dims() int { return e.dims }

func (e *GeminiEmbedder) Model() string { return e.model }
