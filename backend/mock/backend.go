// Package mock provides a test double for backend.Backend.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/seekr/backend"
	"github.com/poiesic/seekr/core"
)

// MockBackend is a test double for backend.Backend.
// It allows custom behavior injection via function fields. Unset functions
// fall back to deterministic defaults.
type MockBackend struct {
	// SearchFunc is called by Search if set.
	SearchFunc func(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error)

	// SuggestFunc is called by Suggest if set.
	SuggestFunc func(ctx context.Context, req core.SuggestRequest) ([]core.Suggestion, error)

	// NaturalLanguageSearchFunc is called by NaturalLanguageSearch if set.
	NaturalLanguageSearchFunc func(ctx context.Context, req core.NaturalLanguageRequest) (*core.SearchResponse, error)

	// SemanticSearchFunc is called by SemanticSearch if set.
	SemanticSearchFunc func(ctx context.Context, req core.SemanticRequest) (*core.SearchResponse, error)

	// FacetedSearchFunc is called by FacetedSearch if set.
	FacetedSearchFunc func(ctx context.Context, req core.FacetedRequest) (*core.SearchResponse, error)

	mu       sync.Mutex
	calls    map[string]int
	searches []core.SearchRequest
}

var _ backend.Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock backend with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockBackend() *MockBackend {
	return &MockBackend{calls: make(map[string]int)}
}

// Search returns SearchFunc's result, or one asset named after the query
// with a SearchID counting primary searches ("s1", "s2", ...).
func (m *MockBackend) Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
	n := m.record("Search")
	m.mu.Lock()
	m.searches = append(m.searches, req)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return defaultResponse(req.Query, fmt.Sprintf("s%d", n)), nil
}

// Suggest returns SuggestFunc's result, or a single completion.
func (m *MockBackend) Suggest(ctx context.Context, req core.SuggestRequest) ([]core.Suggestion, error) {
	m.record("Suggest")
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, req)
	}
	return []core.Suggestion{{Text: req.Query + "s", Source: core.SuggestionSourceQuery}}, nil
}

// NaturalLanguageSearch returns NaturalLanguageSearchFunc's result or a default response.
func (m *MockBackend) NaturalLanguageSearch(ctx context.Context, req core.NaturalLanguageRequest) (*core.SearchResponse, error) {
	n := m.record("NaturalLanguageSearch")
	if m.NaturalLanguageSearchFunc != nil {
		return m.NaturalLanguageSearchFunc(ctx, req)
	}
	return defaultResponse(req.Query, fmt.Sprintf("nl%d", n)), nil
}

// SemanticSearch returns SemanticSearchFunc's result or a default response.
func (m *MockBackend) SemanticSearch(ctx context.Context, req core.SemanticRequest) (*core.SearchResponse, error) {
	n := m.record("SemanticSearch")
	if m.SemanticSearchFunc != nil {
		return m.SemanticSearchFunc(ctx, req)
	}
	return defaultResponse(req.Query, fmt.Sprintf("sem%d", n)), nil
}

// FacetedSearch returns FacetedSearchFunc's result or a default response.
func (m *MockBackend) FacetedSearch(ctx context.Context, req core.FacetedRequest) (*core.SearchResponse, error) {
	n := m.record("FacetedSearch")
	if m.FacetedSearchFunc != nil {
		return m.FacetedSearchFunc(ctx, req)
	}
	resp := defaultResponse(req.Query, fmt.Sprintf("f%d", n))
	for _, field := range req.FacetFields {
		resp.Facets = append(resp.Facets, core.Facet{Field: field})
	}
	return resp, nil
}

// CallCount returns how many times the named method was called.
func (m *MockBackend) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// SearchRequests returns the primary search requests received so far.
func (m *MockBackend) SearchRequests() []core.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.SearchRequest, len(m.searches))
	copy(out, m.searches)
	return out
}

// Reset clears call counts, recorded requests and injected behavior.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
	m.searches = nil
	m.SearchFunc = nil
	m.SuggestFunc = nil
	m.NaturalLanguageSearchFunc = nil
	m.SemanticSearchFunc = nil
	m.FacetedSearchFunc = nil
}

func (m *MockBackend) record(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.calls[method]
}

func defaultResponse(query, searchID string) *core.SearchResponse {
	return &core.SearchResponse{
		Assets:   []core.Asset{{ID: "asset-" + query, Name: query, Type: "table"}},
		Total:    1,
		SearchID: searchID,
	}
}
