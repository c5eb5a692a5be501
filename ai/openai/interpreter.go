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
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/seekr/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryInterpreter implements ai.QueryInterpreter using OpenAI-compatible chat APIs.
type QueryInterpreter struct {
	client      llms.Model
	maxAttempts int
	logger      *slog.Logger
}

// interpretation matches the structure expected from the LLM.
type interpretation struct {
	Keywords   []string `json:"keywords"`
	AssetTypes []string `json:"asset_types"`
	Tags       []string `json:"tags"`
	Owners     []string `json:"owners"`
	MinQuality float64  `json:"min_quality"`
}

func newQueryInterpreter(config *ai.Config, logger *slog.Logger) (*QueryInterpreter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.InterpreterHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.InterpreterModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryInterpreter{
		client:      client,
		maxAttempts: config.MaxAttempts,
		logger:      logger.With("component", "openai-interpreter"),
	}, nil
}

// NewQueryInterpreter creates a new query interpreter using the provided configuration.
//
// Returns ai.QueryInterpreter interface to enforce abstraction.
func NewQueryInterpreter(config *ai.Config) (ai.QueryInterpreter, error) {
	return newQueryInterpreter(config, slog.Default())
}

// Interpret asks the model for structured criteria and sanitizes its answer.
func (q *QueryInterpreter) Interpret(ctx context.Context, text string) (*ai.InterpretedQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &ai.InterpretedQuery{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result interpretation
	var lastErr error
	for attempt := 0; attempt < q.maxAttempts; attempt++ {
		response, err := q.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			q.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			q.logger.Debug("no choices returned from model")
			return fallbackInterpretation(text), nil
		}

		responseText, err := parseInterpretation(response.Choices[0].Content, &result)
		if err != nil {
			lastErr = err
			q.logger.Warn("error parsing interpreter response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		q.logger.Error("failed to parse interpreter response after retries", "err", lastErr)
		return nil, lastErr
	}

	out := result.sanitize()
	if len(out.Keywords) == 0 && len(out.AssetTypes) == 0 && len(out.Tags) == 0 &&
		len(out.Owners) == 0 && out.MinQuality == 0 {
		return fallbackInterpretation(text), nil
	}

	q.logger.Debug("interpreted query",
		"keywords", len(out.Keywords),
		"asset_types", out.AssetTypes,
		"tags", out.Tags,
		"owners", out.Owners)
	return out, nil
}

// parseInterpretation cleans up the model output and decodes it into dst.
// It returns the text it tried to decode.
func parseInterpretation(raw string, dst *interpretation) (string, error) {
	text := cleanResponse(raw)

	*dst = interpretation{}
	return text, json.Unmarshal([]byte(text), dst)
}

// sanitize lowercases values, drops unknown asset types and clamps the
// quality bound to [0, 1].
func (r interpretation) sanitize() *ai.InterpretedQuery {
	out := &ai.InterpretedQuery{
		Keywords: cleanWords(r.Keywords),
		Tags:     cleanWords(r.Tags),
		Owners:   cleanWords(r.Owners),
	}
	for _, t := range cleanWords(r.AssetTypes) {
		t = strings.ReplaceAll(t, " ", "_")
		if slices.Contains(ai.AssetTypes, t) {
			out.AssetTypes = append(out.AssetTypes, t)
		}
	}
	out.MinQuality = min(max(r.MinQuality, 0), 1)
	return out
}

// fallbackInterpretation treats every word of text as a keyword.
func fallbackInterpretation(text string) *ai.InterpretedQuery {
	return &ai.InterpretedQuery{Keywords: cleanWords(strings.Fields(text))}
}

func cleanWords(in []string) []string {
	var out []string
	for _, w := range in {
		w = strings.ToLower(scrubWord(w))
		if w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}
