package main

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/mantyhq/manty/internal/analysis"
	"github.com/mantyhq/manty/internal/caption"
	"github.com/mantyhq/manty/internal/config"
	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/index"
	"github.com/mantyhq/manty/internal/match"
	"github.com/mantyhq/manty/internal/pipeline"
)

// deps holds the wired service graph for one command invocation.
type deps struct {
	cfg      *config.Config
	engine   *pipeline.Engine
	matcher  *match.Matcher
	indexer  *index.Indexer
	idx      index.Index
	shutdown func()
}

// buildDeps loads configuration and constructs the full pipeline. Exits
// fatally on misconfiguration; commands assume a usable graph.
func buildDeps(ctx context.Context) *deps {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	var client *genai.Client
	if cfg.GeminiAPIKey != "" {
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; analyze and caption commands will fail")
	}

	embedder := buildEmbedder(ctx, cfg, client)
	idx, closeIdx := buildIndex(cfg)

	matcher, err := match.New(embedder, idx, match.DefaultReasons)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire matcher")
	}
	indexer, err := index.NewIndexer(embedder, idx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire trend indexer")
	}

	analyzer := analysis.NewAnalyzer(analysis.NewGeminiVision(client, cfg.GeminiModel))
	captioner := caption.NewGenerator(caption.NewGeminiGenerator(client, cfg.GeminiModel))
	engine := pipeline.NewEngine(analyzer, matcher, captioner, cfg.BatchConcurrency)

	return &deps{
		cfg:      cfg,
		engine:   engine,
		matcher:  matcher,
		indexer:  indexer,
		idx:      idx,
		shutdown: closeIdx,
	}
}

func buildEmbedder(ctx context.Context, cfg *config.Config, client *genai.Client) embedding.Embedder {
	switch cfg.EmbedProvider {
	case config.EmbedProviderGemini:
		return embedding.NewGeminiEmbedder(client, "", cfg.EmbedDimensions)
	case config.EmbedProviderTitan:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load AWS configuration for Titan embeddings")
		}
		return embedding.NewTitanEmbedder(bedrockruntime.NewFromConfig(awsCfg), "", cfg.EmbedDimensions)
	case config.EmbedProviderDeterministic:
		return embedding.NewDeterministic(cfg.EmbedDimensions)
	}
	log.Fatal().Str("provider", cfg.EmbedProvider).Msg("Unknown embed provider")
	return nil
}

func buildIndex(cfg *config.Config) (index.Index, func()) {
	switch cfg.IndexProvider {
	case config.IndexProviderSQLite:
		idx, err := index.NewSQLiteIndex(cfg.IndexPath, cfg.EmbedDimensions)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.IndexPath).Msg("Failed to open SQLite index")
		}
		return idx, func() {
			if err := idx.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close index")
			}
		}
	case config.IndexProviderPinecone:
		idx, err := index.NewPineconeIndex(cfg.PineconeIndexHost, cfg.PineconeAPIKey, cfg.EmbedDimensions)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure Pinecone index")
		}
		return idx, func() {}
	}
	log.Fatal().Str("provider", cfg.IndexProvider).Msg("Unknown index provider")
	return nil, nil
}

// printJSON renders a command result to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to render result")
		return
	}
	fmt.Println(string(out))
}
