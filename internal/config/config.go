package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// LLM providers. Gemini is preferred when both keys are set, matching the
	// models the stored 768-dim vectors were produced with.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL"`
	GenerationModel string `envconfig:"GENERATION_MODEL"`

	// Telemetry
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Chunking
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"512"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`

	// Retrieval
	MatchThreshold  float64 `envconfig:"MATCH_THRESHOLD" default:"0.7"`
	MatchCount      int     `envconfig:"MATCH_COUNT" default:"5"`
	MaxContextChars int     `envconfig:"MAX_CONTEXT_CHARS" default:"6000"`

	// Generation
	MaxOutputTokens int     `envconfig:"MAX_OUTPUT_TOKENS" default:"8192"`
	Temperature     float64 `envconfig:"TEMPERATURE" default:"0.7"`

	// Notes
	NoteMaxChars int `envconfig:"NOTE_MAX_CHARS" default:"8000"`

	// Provider calls carry their own timeout, shorter than any user-facing
	// request timeout, so a provider hang degrades to a reported error.
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`

	// Ingestion
	IngestConcurrency int           `envconfig:"INGEST_CONCURRENCY" default:"4"`
	JobPollInterval   time.Duration `envconfig:"JOB_POLL_INTERVAL" default:"10s"`

	// Embedding cache
	EmbedCacheSize int           `envconfig:"EMBED_CACHE_SIZE" default:"512"`
	EmbedCacheTTL  time.Duration `envconfig:"EMBED_CACHE_TTL" default:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("INKWELL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasProvider() bool {
	return c.HasGemini() || c.HasOpenAI()
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
