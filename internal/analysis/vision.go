package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/mantyhq/manty/internal/assets"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/jsonutil"
	"github.com/mantyhq/manty/internal/metrics"
)

// DefaultVisionModel is the multimodal model used for media analysis.
const DefaultVisionModel = "gemini-2.5-flash"

// Vision produces a raw structured analysis for one media item. The
// source may be a local file path or an https URL the model can fetch.
type Vision interface {
	Describe(ctx context.Context, source string, mediaType MediaType) (MediaAnalysis, error)
}

// GeminiVision implements Vision over the Gemini API. Local files are
// sent inline; URLs are passed through as file references.
type GeminiVision struct {
	client *genai.Client
	model  string
}

func NewGeminiVision(client *genai.Client, model string) *GeminiVision {
	if model == "" {
		model = DefaultVisionModel
	}
	return &GeminiVision{client: client, model: model}
}

func (v *GeminiVision) Describe(ctx context.Context, source string, mediaType MediaType) (MediaAnalysis, error) {
	if v.client == nil {
		return MediaAnalysis{}, &fault.AnalysisError{Reason: "gemini client not configured, set GEMINI_API_KEY"}
	}

	rec := metrics.ForOperation("MediaAnalysis")
	defer rec.Flush()

	mediaPart, err := buildMediaPart(source, mediaType)
	if err != nil {
		rec.Count("AnalysisFailure")
		return MediaAnalysis{}, &fault.AnalysisError{Reason: "unreadable media", Err: err}
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.AnalysisSystemPrompt}},
		},
	}
	parts := []*genai.Part{
		mediaPart,
		{Text: fmt.Sprintf("Analyze this %s.", mediaType)},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	log.Debug().
		Str("model", v.model).
		Str("source", source).
		Str("media_type", string(mediaType)).
		Msg("Starting Gemini API call for media analysis")

	callStart := time.Now()
	resp, err := v.client.Models.GenerateContent(ctx, v.model, contents, config)
	duration := time.Since(callStart)
	rec.Latency("AnalysisLatency", duration)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to analyze media with Gemini")
		rec.Count("AnalysisFailure")
		return MediaAnalysis{}, &fault.AnalysisError{Reason: "model call failed", Err: err}
	}
	if resp == nil {
		rec.Count("AnalysisFailure")
		return MediaAnalysis{}, &fault.AnalysisError{Reason: "empty response from model"}
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Gemini API response received for media analysis")

	result, err := jsonutil.Decode[MediaAnalysis](responseText)
	if err != nil {
		rec.Count("AnalysisParseFailure")
		return MediaAnalysis{}, &fault.AnalysisError{Reason: "unparseable model response", Err: err}
	}
	result.MediaType = mediaType
	return result, nil
}

func buildMediaPart(source string, mediaType MediaType) (*genai.Part, error) {
	mimeType, err := mimeTypeFor(source, mediaType)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return &genai.Part{
			FileData: &genai.FileData{MIMEType: mimeType, FileURI: source},
		}, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read media file: %w", err)
	}
	return &genai.Part{
		InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
	}, nil
}

func mimeTypeFor(source string, mediaType MediaType) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(source), "."))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg", nil
	case "png":
		return "image/png", nil
	case "gif":
		return "image/gif", nil
	case "webp":
		return "image/webp", nil
	case "heic":
		return "image/heic", nil
	case "mp4":
		return "video/mp4", nil
	case "mov":
		return "video/quicktime", nil
	case "webm":
		return "video/webm", nil
	}
	// No usable extension: fall back to a generic type for the declared kind.
	switch mediaType {
	case MediaImage:
		return "image/jpeg", nil
	case MediaVideo:
		return "video/mp4", nil
	}
	return "", fmt.Errorf("cannot determine MIME type for %q", source)
}
