package match

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mantyhq/manty/internal/analysis"
	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/index"
	"github.com/mantyhq/manty/internal/metrics"
)

// DefaultTopK bounds result size when the caller does not specify one.
const DefaultTopK = 5

// Matcher embeds an analysis projection and queries the trend index.
type Matcher struct {
	embedder embedding.Embedder
	idx      index.Index
	reasons  ReasonCatalog

	mu    sync.Mutex
	cache map[string]embedding.Vector
}

// New wires a matcher. The embedder and index must agree on dimensions;
// a mismatch here would otherwise surface as a confusing per-query
// failure.
func New(embedder embedding.Embedder, idx index.Index, reasons ReasonCatalog) (*Matcher, error) {
	if embedder.Dims() != idx.Dims() {
		return nil, fmt.Errorf("embedder produces %d dims but index expects %d", embedder.Dims(), idx.Dims())
	}
	if reasons == nil {
		reasons = DefaultReasons
	}
	return &Matcher{
		embedder: embedder,
		idx:      idx,
		reasons:  reasons,
		cache:    make(map[string]embedding.Vector),
	}, nil
}

// Match returns the topK trends most similar to the analyzed media,
// ordered by score descending with popularity as tiebreak. Matching the
// same analysis twice returns identical results for an unchanged index.
func (m *Matcher) Match(ctx context.Context, a *analysis.MediaAnalysis, topK int) ([]Match, error) {
	return m.matchProjection(ctx, a.ProjectionText(), topK)
}

// MatchText matches an ad-hoc text query against the trend index. Used
// by the search surface; shares the embedding cache with Match.
func (m *Matcher) MatchText(ctx context.Context, query string, topK int) ([]Match, error) {
	return m.matchProjection(ctx, strings.TrimSpace(query), topK)
}

func (m *Matcher) matchProjection(ctx context.Context, projection string, topK int) ([]Match, error) {
	if topK < 1 {
		topK = DefaultTopK
	}

	rec := metrics.ForOperation("TrendMatch")
	defer rec.Flush()
	start := time.Now()

	vec, err := m.embed(ctx, projection, rec)
	if err != nil {
		rec.Count("MatchFailure")
		return nil, err
	}

	hits, err := m.idx.Query(ctx, vec, topK)
	if err != nil {
		rec.Count("MatchFailure")
		return nil, err
	}

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{
			TrendID:              h.ID,
			Score:                h.Score,
			CompatibilityReasons: m.reasons.For(h.Score),
			Meta:                 h.Meta,
		}
	}
	rank(matches)

	rec.Metric("MatchCount", float64(len(matches)), metrics.UnitCount)
	rec.Latency("MatchLatency", time.Since(start))
	log.Debug().
		Int("top_k", topK).
		Int("matches", len(matches)).
		Msg("Trend match complete")
	return matches, nil
}

// embed resolves the projection to a vector, memoizing per process.
// The cache key includes model and dimensions so switching providers
// never serves a stale vector.
func (m *Matcher) embed(ctx context.Context, projection string, rec *metrics.Recorder) (embedding.Vector, error) {
	key := fmt.Sprintf("%x", sha256.Sum256([]byte(
		fmt.Sprintf("%s|%d|%s", m.embedder.Model(), m.embedder.Dims(), projection))))

	m.mu.Lock()
	cached, ok := m.cache[key]
	m.mu.Unlock()
	if ok {
		rec.Count("EmbedCacheHit")
		return cached, nil
	}

	vec, err := m.embedder.Embed(ctx, projection)
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckDims(vec, m.idx.Dims(), m.embedder.Model()); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[key] = vec
	m.mu.Unlock()
	rec.Count("EmbedCacheMiss")
	return vec, nil
}
