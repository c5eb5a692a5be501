// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.




package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid ai config")

// DefaultHost is a local OpenAI-compatible server such as Ollama.
const DefaultHost = "http://localhost:11434/v1"

// Config selects the OpenAI-compatible services used for semantic search
// and natural-language query interpretation.
type Config struct {
	// EmbeddingHost serves the embeddings endpoint used to vectorize
	// queries and catalog assets.
	EmbeddingHost string

	// InterpreterHost serves the chat endpoint used to turn free-form text
	// into search criteria.
	InterpreterHost string

	// EmbeddingModel, e.g. "embeddinggemma" or "text-embedding-3-small".
	EmbeddingModel string

	// InterpreterModel, e.g. "qwen2.5:3b" or "gpt-4o-mini".
	InterpreterModel string

	// APIKey is sent as the bearer token. Local servers ignore it.
	// Default: "none"
	APIKey string

	// MaxAttempts is how many times a malformed interpreter answer is
	// retried (1-10).
	// Default: 3
	MaxAttempts int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithInterpreterHost sets the interpreter service URL.
func WithInterpreterHost(host string) ConfigOption {
	return func(c *Config) {
		c.InterpreterHost = host
	}
}

// WithHost points both services at one server.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.InterpreterHost = host
	}
}

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithInterpreterModel sets the interpreter model.
func WithInterpreterModel(model string) ConfigOption {
	return func(c *Config) {
		c.InterpreterModel = model
	}
}

// WithAPIKey sets the bearer token for both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithMaxAttempts sets how many times the interpreter retries malformed output.
func WithMaxAttempts(n int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// DefaultConfig targets a local server with small models.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:    DefaultHost,
		InterpreterHost:  DefaultHost,
		EmbeddingModel:   "embeddinggemma",
		InterpreterModel: "qwen2.5:3b",
		APIKey:           "none",
		MaxAttempts:      3,
	}
}

// NewConfig applies opts on top of DefaultConfig.
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://embed:11434"),
//	    ai.WithInterpreterHost("https://api.openai.com"),
//	    ai.WithInterpreterModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize appends the /v1 API prefix to hosts that lack it and fills in
// the placeholder API key.
func (c *Config) Normalize() {
	if c.APIKey == "" {
		c.APIKey = "none"
	}
	c.EmbeddingHost = apiBase(c.EmbeddingHost)
	c.InterpreterHost = apiBase(c.InterpreterHost)
}

// Validate normalizes c and reports every missing or out-of-range field.
func (c *Config) Validate() error {
	c.Normalize()

	var errs []error
	required := []struct{ name, value string }{
		{"EmbeddingHost", c.EmbeddingHost},
		{"InterpreterHost", c.InterpreterHost},
		{"EmbeddingModel", c.EmbeddingModel},
		{"InterpreterModel", c.InterpreterModel},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrInvalidConfig, f.name))
		}
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		errs = append(errs, fmt.Errorf("%w: MaxAttempts must be between 1 and 10, got %d", ErrInvalidConfig, c.MaxAttempts))
	}
	return errors.Join(errs...)
}

func apiBase(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}
