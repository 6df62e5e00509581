// Package embedding provides a pluggable interface for text embedding
// providers. The matcher accepts any Embedder; production wiring uses
// Gemini or Amazon Titan, tests use the deterministic implementation.
//
// There is deliberately no random-vector fallback: if an embedding
// cannot be computed the call fails with an EmbeddingError rather than
// returning noise that would corrupt similarity results.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/mantyhq/manty/internal/fault"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// DefaultDims is the default embedding dimension, shared with the
// trend index configuration.
const DefaultDims = 768

// Embedder generates embedding vectors from text.
type Embedder interface {
	// Embed converts text into a vector of exactly Dims() elements.
	Embed(ctx context.Context, text string) (Vector, error)
	// Dims is the fixed dimension every produced vector has.
	Dims() int
	// Model identifies the backing model and version. Cache keys and
	// invalidation depend on it.
	Model() string
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched or empty vectors score 0.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CheckDims verifies that vec has the expected dimension. A mismatch is
// a configuration error between embedder and index, reported as an
// EmbeddingError — never silently truncated or padded.
func CheckDims(vec Vector, dims int, model string) error {
	if len(vec) != dims {
		return &fault.EmbeddingError{
			Model:  model,
			Reason: fmt.Sprintf("dimension mismatch: got %d, index expects %d", len(vec), dims),
		}
	}
	return nil
}
