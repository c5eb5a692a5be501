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




package openai

import (
	"log/slog"
	"sync"

	"github.com/poiesic/seekr/ai"
)

// Provider implements ai.AIProvider on top of OpenAI-compatible services.
// It owns one embedder and one query interpreter built from the same config.
type Provider struct {
	config      *ai.Config
	embedder    *Embedder
	interpreter *QueryInterpreter
	logger      *slog.Logger
	closeOnce   sync.Once
}

// ProviderOption configures a Provider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger shared by the provider's services.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(o *providerOptions) {
		o.logger = logger
	}
}

// NewProvider validates config and builds the embedder and interpreter.
// The result is returned as ai.AIProvider so callers stay independent of
// this package.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	o := providerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config, o.logger)
	if err != nil {
		return nil, err
	}
	interpreter, err := newQueryInterpreter(config, o.logger)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("component", "openai-provider")
	logger.Debug("provider ready",
		"embedding_model", config.EmbeddingModel,
		"interpreter_model", config.InterpreterModel)
	return &Provider{
		config:      config,
		embedder:    embedder,
		interpreter: interpreter,
		logger:      logger,
	}, nil
}

// Embedder returns the embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// QueryInterpreter returns the natural-language query interpreter.
func (p *Provider) QueryInterpreter() ai.QueryInterpreter {
	return p.interpreter
}

// Close is safe to call more than once. The HTTP clients hold nothing that
// needs releasing.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		p.logger.Debug("closing provider")
	})
	return nil
}
