package memory

import "errors"

var (
	// ErrEmbedderRequired is returned by SemanticSearch when no embedder is configured.
	ErrEmbedderRequired = errors.New("semantic search requires an embedder")

	// ErrUnknownFacetField is returned for facet fields the engine cannot compute.
	ErrUnknownFacetField = errors.New("unknown facet field")

	// ErrUnknownSortField is returned for sort fields the engine cannot order by.
	ErrUnknownSortField = errors.New("unknown sort field")

	// ErrInvalidCatalog is returned when a catalog file cannot be read.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
