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




// Package openai talks to OpenAI-compatible servers (OpenAI, Ollama, vLLM,
// LocalAI) through langchaingo.
//
// The embedder vectorizes queries and catalog assets for semantic search.
// Inputs are lowercased, whitespace-collapsed and truncated before they are
// sent, and batches are split into requests of at most 64 texts.
//
// The query interpreter asks a chat model for a JSON object of keywords,
// asset types, tags, owners and a minimum quality. Small local models often
// wrap the object in code fences or prose, leave keys unquoted or add
// trailing commas; those defects are repaired before decoding and a
// response that still fails to decode is retried. Values are lowercased,
// unknown asset types are dropped and the quality bound is clamped to
// [0, 1]. When nothing is extracted every word of the input becomes a
// keyword.
//
//	provider, err := openai.NewProvider(
//	    ai.NewConfig(ai.WithHost("http://localhost:11434")),
//	    openai.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	q, err := provider.QueryInterpreter().Interpret(ctx, "pii tables owned by finance")
package openai
