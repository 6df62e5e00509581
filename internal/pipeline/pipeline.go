// Package pipeline composes analysis, matching, and caption generation
// into the engine surface the application consumes. Each stage is
// injected behind a small interface so the engine can be exercised
// against fakes.
package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mantyhq/manty/internal/analysis"
	"github.com/mantyhq/manty/internal/caption"
	"github.com/mantyhq/manty/internal/match"
	"github.com/mantyhq/manty/internal/platform"
)

// Analyzer is the analysis stage.
type Analyzer interface {
	Analyze(ctx context.Context, source string, mediaType analysis.MediaType) (analysis.MediaAnalysis, error)
}

// Matcher is the trend-matching stage.
type Matcher interface {
	Match(ctx context.Context, a *analysis.MediaAnalysis, topK int) ([]match.Match, error)
}

// Captioner is the caption-generation stage.
type Captioner interface {
	Generate(ctx context.Context, a *analysis.MediaAnalysis, p platform.ID, tone caption.Tone, trendContext []match.Match, count int) (caption.Result, error)
}

// Engine is the composed pipeline.
type Engine struct {
	analyzer  Analyzer
	matcher   Matcher
	captioner Captioner

	// batchConcurrency bounds concurrent analyses in AnalyzeBatch.
	batchConcurrency int
}

func NewEngine(analyzer Analyzer, matcher Matcher, captioner Captioner, batchConcurrency int) *Engine {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	return &Engine{
		analyzer:         analyzer,
		matcher:          matcher,
		captioner:        captioner,
		batchConcurrency: batchConcurrency,
	}
}

// Analyze runs the analysis stage for one media item.
func (e *Engine) Analyze(ctx context.Context, source string, mediaType analysis.MediaType) (analysis.MediaAnalysis, error) {
	return e.analyzer.Analyze(ctx, source, mediaType)
}

// Match ranks trends against an analysis.
func (e *Engine) Match(ctx context.Context, a *analysis.MediaAnalysis, topK int) ([]match.Match, error) {
	return e.matcher.Match(ctx, a, topK)
}

// GenerateCaptions produces caption variants, optionally trend-aware.
func (e *Engine) GenerateCaptions(
	ctx context.Context,
	a *analysis.MediaAnalysis,
	p platform.ID,
	tone caption.Tone,
	trendContext []match.Match,
	count int,
) (caption.Result, error) {
	return e.captioner.Generate(ctx, a, p, tone, trendContext, count)
}

// BatchItem is one media item in a batch request.
type BatchItem struct {
	Source    string
	MediaType analysis.MediaType
}

// BatchResult pairs one batch item's outcome with its input position.
// Exactly one of Analysis or Err is meaningful.
type BatchResult struct {
	Item     BatchItem
	Analysis analysis.MediaAnalysis
	Err      error
}

// AnalyzeBatch analyzes items concurrently, bounded by the engine's
// batch concurrency. Results are positionally aligned with items, never
// ordered by completion, and one item's failure does not abort the
// rest.
func (e *Engine) AnalyzeBatch(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.batchConcurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it BatchItem) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire semaphore
			defer func() { <-sem }() // Release semaphore

			a, err := e.analyzer.Analyze(ctx, it.Source, it.MediaType)
			results[idx] = BatchResult{Item: it, Analysis: a, Err: err}
		}(i, item)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info().
		Int("items", len(items)).
		Int("failed", failed).
		Int("concurrency", e.batchConcurrency).
		Msg("Batch analysis complete")
	return results
}
