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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/seekr/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// embedBatchSize caps the number of texts sent in one request when
	// indexing a catalog.
	embedBatchSize = 64

	// maxEmbedRunes truncates very long asset descriptions.
	maxEmbedRunes = 2048
)

// Embedder implements ai.Embedder using an OpenAI-compatible embeddings API.
// Queries and catalog documents are normalized the same way so their vectors
// are comparable.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

func newEmbedder(config *ai.Config, logger *slog.Logger) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(embedBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   logger.With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a standalone embedder. Most callers get one from
// NewProvider instead.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config, slog.Default())
}

// EmbedText embeds a search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds catalog documents. Vectors are returned in input order
// and are guaranteed to share one dimension.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = normalizeEmbedInput(t)
	}
	e.logger.Debug("embedding", "count", len(inputs))

	vectors, err := e.embedder.EmbedDocuments(ctx, inputs)
	if err != nil {
		e.logger.Error("embedding failed", "count", len(inputs), "err", err)
		return nil, err
	}
	if len(vectors) != len(inputs) {
		e.logger.Warn("embedding count mismatch", "want", len(inputs), "got", len(vectors))
		return nil, fmt.Errorf("%w: want %d, got %d", ErrEmptyEmbedding, len(inputs), len(vectors))
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: input %d", ErrEmptyEmbedding, i)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%w: input %d has %d, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return vectors, nil
}

// normalizeEmbedInput collapses whitespace, lowercases and truncates text.
// An empty input is replaced by a single space since some servers reject
// empty strings.
func normalizeEmbedInput(text string) string {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))
	if utf8.RuneCountInString(text) > maxEmbedRunes {
		text = string([]rune(text)[:maxEmbedRunes])
	}
	if text == "" {
		return " "
	}
	return text
}
