package backend

import (
	"context"

	"github.com/poiesic/seekr/core"
)

// Backend is the remote search service the controller queries.
// Implementations must be safe for concurrent use. Every method is an
// opaque, fallible call; callers do not retry.
type Backend interface {
	// Search runs the primary keyword search.
	Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error)

	// Suggest returns completions for a partial query, best first.
	Suggest(ctx context.Context, req core.SuggestRequest) ([]core.Suggestion, error)

	// NaturalLanguageSearch lets the backend interpret free-form text.
	NaturalLanguageSearch(ctx context.Context, req core.NaturalLanguageRequest) (*core.SearchResponse, error)

	// SemanticSearch ranks results by embedding similarity.
	SemanticSearch(ctx context.Context, req core.SemanticRequest) (*core.SearchResponse, error)

	// FacetedSearch runs a search and computes only the requested facets.
	FacetedSearch(ctx context.Context, req core.FacetedRequest) (*core.SearchResponse, error)
}
