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


// Package ai defines the model-backed services seekr's search backends use:
// an Embedder for semantic search and a QueryInterpreter that turns text
// like "trusted revenue dashboards owned by finance" into an
// InterpretedQuery, which merges into core.SearchFilters via Filters.
//
// Backends accept these interfaces, never a concrete client. ai/openai is
// the production implementation and ai/mock provides deterministic test
// doubles. Production constructors return interfaces; mock constructors
// return concrete types so tests can inject behavior and count calls.
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	q, err := provider.QueryInterpreter().Interpret(ctx, "trusted revenue dashboards")
//	filters := q.Filters(core.SearchFilters{})
package ai
