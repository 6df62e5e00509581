package index

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/trend"
)

// Indexer is the curation write path: it validates a trend, embeds its
// canonical text, and upserts vector plus metadata into the index.
type Indexer struct {
	embedder embedding.Embedder
	idx      Index
}

func NewIndexer(embedder embedding.Embedder, idx Index) (*Indexer, error) {
	if embedder.Dims() != idx.Dims() {
		return nil, fmt.Errorf("embedder produces %d dims but index expects %d", embedder.Dims(), idx.Dims())
	}
	return &Indexer{embedder: embedder, idx: idx}, nil
}

// Add indexes a trend. A missing ID is assigned; a missing color set is
// filled from the mood catalog. The trend's Embedding field is
// populated as a side effect.
func (ix *Indexer) Add(ctx context.Context, t *trend.Trend) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if len(t.Colors) == 0 {
		if color, ok := trend.MoodColors[t.Mood]; ok {
			t.Colors = []string{color}
		}
	}
	if err := t.Validate(); err != nil {
		return err
	}

	vec, err := ix.embedder.Embed(ctx, t.EmbeddingText())
	if err != nil {
		return err
	}
	if err := embedding.CheckDims(vec, ix.idx.Dims(), ix.embedder.Model()); err != nil {
		return err
	}
	t.Embedding = vec

	if err := ix.idx.Upsert(ctx, t.ID, vec, MetadataFor(t)); err != nil {
		return err
	}
	log.Info().Str("trend_id", t.ID).Str("name", t.Name).Msg("Trend indexed")
	return nil
}

// Deactivate retires a trend without removing it: the stored vector is
// kept but flagged inactive, so it stops matching while its metadata
// stays resolvable.
func (ix *Indexer) Deactivate(ctx context.Context, t *trend.Trend) error {
	t.IsActive = false
	t.UpdatedAt = time.Now().UTC()
	if len(t.Embedding) != ix.idx.Dims() {
		vec, err := ix.embedder.Embed(ctx, t.EmbeddingText())
		if err != nil {
			return err
		}
		t.Embedding = vec
	}
	return ix.idx.Upsert(ctx, t.ID, t.Embedding, MetadataFor(t))
}

// Remove deletes a trend's vector from the index entirely.
func (ix *Indexer) Remove(ctx context.Context, id string) error {
	return ix.idx.Delete(ctx, id)
}
