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


package mock

import (
	"sync/atomic"

	"github.com/poiesic/seekr/ai"
)

// MockProvider is a test double for ai.AIProvider that hands out a mock
// embedder and interpreter and records Close calls.
type MockProvider struct {
	embedder    *MockEmbedder
	interpreter *MockQueryInterpreter
	closed      atomic.Int32
}

// NewMockProvider returns a provider with default mock services. Type-assert
// to *MockProvider to reach the concrete mocks.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockQueryInterpreter())
}

// NewMockProviderWithServices wraps caller-configured mocks.
func NewMockProviderWithServices(embedder *MockEmbedder, interpreter *MockQueryInterpreter) ai.AIProvider {
	return &MockProvider{
		embedder:    embedder,
		interpreter: interpreter,
	}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) QueryInterpreter() ai.QueryInterpreter {
	return p.interpreter
}

// Close counts the call and always succeeds.
func (p *MockProvider) Close() error {
	p.closed.Add(1)
	return nil
}

// CloseCount reports how many times Close was called.
func (p *MockProvider) CloseCount() int {
	return int(p.closed.Load())
}

// GetMockEmbedder returns the concrete embedder for assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockInterpreter returns the concrete interpreter for assertions.
func (p *MockProvider) GetMockInterpreter() *MockQueryInterpreter {
	return p.interpreter
}
