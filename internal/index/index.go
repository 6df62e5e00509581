// Package index adapts external vector-similarity stores to the trend
// matching pipeline. Two implementations exist: a SQLite-backed local
// index for development and tests, and a Pinecone adapter for the
// hosted service the original deployment used.
//
// Adapters normalize raw similarity to [0,1] before returning it,
// clamping out-of-range values, and scope queries to active trends so
// an active trend is never displaced from the top-K by a retired one.
package index

import (
	"context"
	"fmt"

	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/platform"
	"github.com/mantyhq/manty/internal/trend"
)

// Metadata is the typed subset of a Trend stored alongside its vector.
// It replaces the loosely-typed metadata blobs of the raw store APIs
// and is validated at the adapter boundary on upsert.
type Metadata struct {
	Name       string         `json:"name"`
	Category   trend.Category `json:"category"`
	Platforms  []platform.ID  `json:"platforms"`
	Popularity int            `json:"popularity"`
	Hashtags   []string       `json:"hashtags"`
	Mood       string         `json:"mood"`
	IsActive   bool           `json:"isActive"`
}

// Validate checks the invariants adapters rely on before persisting.
func (m *Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("metadata name is required")
	}
	if !trend.ValidCategory(m.Category) {
		return fmt.Errorf("metadata category %q is not a known trend category", m.Category)
	}
	if m.Popularity < 0 {
		return fmt.Errorf("metadata popularity must be non-negative, got %d", m.Popularity)
	}
	return nil
}

// MetadataFor extracts the indexed subset from a trend.
func MetadataFor(t *trend.Trend) Metadata {
	return Metadata{
		Name:       t.Name,
		Category:   t.Category,
		Platforms:  t.Platforms,
		Popularity: t.Popularity,
		Hashtags:   t.Hashtags,
		Mood:       t.Mood,
		IsActive:   t.IsActive,
	}
}

// Hit is one nearest-neighbor result. Score is normalized similarity
// in [0,1].
type Hit struct {
	ID    string
	Score float64
	Meta  Metadata
}

// Index is the vector store contract the matcher depends on.
//
// Query returns up to topK hits ordered by score descending; fewer than
// topK when the active corpus is smaller, which is not an error. A
// failed remote call is an IndexError, never an empty result.
type Index interface {
	// Upsert stores or replaces the vector and metadata for id.
	// Re-issuing an upsert for the same id overwrites, never duplicates.
	Upsert(ctx context.Context, id string, vec embedding.Vector, meta Metadata) error

	// Delete removes id from the index. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// Query returns the topK nearest active trends to vec.
	Query(ctx context.Context, vec embedding.Vector, topK int) ([]Hit, error)

	// Dims is the configured vector dimension.
	Dims() int
}

// ClampScore normalizes a raw similarity score into [0,1]. Cosine
// scores can be negative depending on index configuration; anything
// outside the range is clamped.
func ClampScore(raw float64) float64 {
	switch {
	case raw < 0:
		return 0
	case raw > 1:
		return 1
	default:
		return raw
	}
}
