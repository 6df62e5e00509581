package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"

	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/metrics"
)

// DefaultTitanModel is the default Bedrock Titan embedding model.
const DefaultTitanModel = "amazon.titan-embed-text-v2:0"

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions"`
	Normalize  bool   `json:"normalize"`
}

type titanEmbedResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// TitanEmbedder computes embeddings through Amazon Bedrock's Titan
// text embedding model. Vectors are normalized by the service.
type TitanEmbedder struct {
	client  *bedrockruntime.Client
	modelID string
	dims    int
}

// NewTitanEmbedder creates a Bedrock Titan embedder. Empty modelID and
// zero dims fall back to DefaultTitanModel and DefaultDims.
func NewTitanEmbedder(client *bedrockruntime.Client, modelID string, dims int) *TitanEmbedder {
	if modelID == "" {
		modelID = DefaultTitanModel
	}
	if dims <= 0 {
		dims = DefaultDims
	}
	return &TitanEmbedder{client: client, modelID: modelID, dims: dims}
}

func (e *TitanEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	body, err := json.Marshal(titanEmbedRequest{
		InputText:  text,
		Dimensions: e.dims,
		Normalize:  true,
	})
	if err != nil {
		return nil, &fault.EmbeddingError{Model: e.modelID, Reason: "marshal request", Err: err}
	}

	start := time.Now()
	result, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	elapsed := time.Since(start)

	m := metrics.ForOperation("embed").
		Dimension("Provider", "titan").
		Latency("EmbedApiLatencyMs", elapsed).
		Count("EmbedApiCalls")
	if err != nil {
		m.Count("EmbedApiErrors")
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Str("modelId", e.modelID).Dur("duration", elapsed).Msg("Bedrock InvokeModel failed")
		return nil, &fault.EmbeddingError{Model: e.modelID, Reason: "remote call failed", Err: err}
	}

	var resp titanEmbedResponse
	if err := json.NewDecoder(bytes.NewReader(result.Body)).Decode(&resp); err != nil {
		return nil, &fault.EmbeddingError{Model: e.modelID, Reason: "decode response", Err: err}
	}
	if len(resp.Embedding) == 0 {
		return nil, &fault.EmbeddingError{Model: e.modelID, Reason: "empty embedding response"}
	}

	vec := make(Vector, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	if err := CheckDims(vec, e.dims, e.modelID); err != nil {
		return nil, err
	}

	log.Debug().
		Str("modelId", e.modelID).
		Int("dims", len(vec)).
		Int("input_tokens", resp.InputTextTokenCount).
		Dur("duration", elapsed).
		Msg("Embedding computed")
	return vec, nil
}

func (e *TitanEmbedder) Dims() int { return e.dims }

func (e *TitanEmbedder) Model() string { return e.modelID }
