// Package config loads runtime configuration from the environment. A
// local .env file is honored when present so development does not need
// exported shell variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Embedding providers.
const (
	EmbedProviderGemini        = "gemini"
	EmbedProviderTitan         = "titan"
	EmbedProviderDeterministic = "deterministic"
)

// Index providers.
const (
	IndexProviderSQLite   = "sqlite"
	IndexProviderPinecone = "pinecone"
)

// Config holds everything the engine needs from the environment.
type Config struct {
	// GeminiAPIKey authenticates vision, text, and gemini embedding
	// calls. Required unless both embed and generation are stubbed.
	GeminiAPIKey string

	// GeminiModel overrides the default vision/text model.
	GeminiModel string

	// EmbedProvider selects the embedding backend: gemini, titan, or
	// deterministic (offline, for tests and local development).
	EmbedProvider string

	// EmbedDimensions is the vector width shared by the embedder and
	// the index.
	EmbedDimensions int

	// IndexProvider selects the vector index backend: sqlite or
	// pinecone.
	IndexProvider string

	// IndexPath is the SQLite database location when IndexProvider is
	// sqlite.
	IndexPath string

	// PineconeAPIKey and PineconeIndexHost configure the pinecone
	// backend.
	PineconeAPIKey    string
	PineconeIndexHost string

	// BatchConcurrency bounds concurrent media analyses in batch mode.
	BatchConcurrency int
}

const (
	defaultEmbedDimensions  = 768
	defaultIndexPath        = "manty.db"
	defaultBatchConcurrency = 4
)

// Load reads configuration from the environment, after loading .env if
// one exists in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env file")
	}

	cfg := &Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		EmbedProvider:     envOr("MANTY_EMBED_PROVIDER", EmbedProviderGemini),
		EmbedDimensions:   defaultEmbedDimensions,
		IndexProvider:     envOr("MANTY_INDEX_PROVIDER", IndexProviderSQLite),
		IndexPath:         envOr("MANTY_INDEX_PATH", defaultIndexPath),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		BatchConcurrency:  defaultBatchConcurrency,
	}

	if v := os.Getenv("MANTY_EMBED_DIMENSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MANTY_EMBED_DIMENSIONS %q", v)
		}
		cfg.EmbedDimensions = n
	}
	if v := os.Getenv("MANTY_BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MANTY_BATCH_CONCURRENCY %q", v)
		}
		cfg.BatchConcurrency = n
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.EmbedProvider {
	case EmbedProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required with the gemini embed provider")
		}
	case EmbedProviderTitan, EmbedProviderDeterministic:
	default:
		return fmt.Errorf("unknown embed provider %q", c.EmbedProvider)
	}

	switch c.IndexProvider {
	case IndexProviderSQLite:
	case IndexProviderPinecone:
		if c.PineconeAPIKey == "" || c.PineconeIndexHost == "" {
			return fmt.Errorf("PINECONE_API_KEY and PINECONE_INDEX_HOST are required with the pinecone index provider")
		}
	default:
		return fmt.Errorf("unknown index provider %q", c.IndexProvider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
