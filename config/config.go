// Package config loads process configuration from the environment.
//
// Variables use the SEEKR_ prefix. A .env file in the working directory is
// loaded first if present; variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/poiesic/seekr/ai"
)

// Prefix is prepended to every variable name.
const Prefix = "SEEKR"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration shared by the CLI and Open.
type Config struct {
	// DBPath is the BadgerDB directory holding history and saved searches.
	// Empty keeps everything in memory.
	DBPath string `envconfig:"DB_PATH"`

	// BackendURL selects the remote search service. Empty uses the
	// in-process catalog engine.
	BackendURL string        `envconfig:"BACKEND_URL"`
	APIKey     string        `envconfig:"API_KEY"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// Catalog is a JSON asset file for the in-process engine. Empty loads
	// the bundled sample catalog.
	Catalog string `envconfig:"CATALOG"`

	DebounceDelay     time.Duration `envconfig:"DEBOUNCE_DELAY" default:"300ms"`
	CacheSize         int           `envconfig:"CACHE_SIZE" default:"50"`
	HistorySize       int           `envconfig:"HISTORY_SIZE" default:"10"`
	PageSize          int           `envconfig:"PAGE_SIZE" default:"20"`
	SemanticThreshold float32       `envconfig:"SEMANTIC_THRESHOLD" default:"0.6"`

	Suggestions      bool `envconfig:"SUGGESTIONS" default:"true"`
	MinSuggestLength int  `envconfig:"MIN_SUGGEST_LENGTH" default:"2"`
	MaxSuggestions   int  `envconfig:"MAX_SUGGESTIONS" default:"5"`

	// Owner is recorded as the creator of saved searches.
	Owner string `envconfig:"OWNER"`

	// AIHost enables embeddings and query interpretation through an
	// OpenAI-compatible service. Empty disables AI features.
	AIHost           string `envconfig:"AI_HOST"`
	AIAPIKey         string `envconfig:"AI_API_KEY"`
	EmbeddingModel   string `envconfig:"EMBEDDING_MODEL" default:"embeddinggemma"`
	InterpreterModel string `envconfig:"INTERPRETER_MODEL" default:"qwen2.5:3b"`
}

// Load reads .env, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks numeric settings.
func (c *Config) Validate() error {
	switch {
	case c.DebounceDelay < 0:
		return fmt.Errorf("%w: debounce delay must not be negative", ErrInvalidConfig)
	case c.CacheSize < 1:
		return fmt.Errorf("%w: cache size must be at least 1", ErrInvalidConfig)
	case c.HistorySize < 1:
		return fmt.Errorf("%w: history size must be at least 1", ErrInvalidConfig)
	case c.PageSize < 1:
		return fmt.Errorf("%w: page size must be at least 1", ErrInvalidConfig)
	case c.SemanticThreshold < 0 || c.SemanticThreshold > 1:
		return fmt.Errorf("%w: semantic threshold must be within [0, 1]", ErrInvalidConfig)
	case c.MinSuggestLength < 0 || c.MaxSuggestions < 1:
		return fmt.Errorf("%w: suggestion limits out of range", ErrInvalidConfig)
	}
	return nil
}

// HasRemoteBackend reports whether a search service URL is configured.
func (c *Config) HasRemoteBackend() bool {
	return c.BackendURL != ""
}

// HasAI reports whether an AI service is configured.
func (c *Config) HasAI() bool {
	return c.AIHost != ""
}

// AIConfig builds the AI provider configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.AIHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithInterpreterModel(c.InterpreterModel),
		ai.WithAPIKey(c.AIAPIKey),
	)
}
