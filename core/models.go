package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Digest returns the hex encoded BLAKE2b-256 sum of data.
// Identical input always produces an identical digest.
func Digest(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SortDirection orders results ascending or descending.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortOptions selects the ordering applied by the backend.
// The zero value means relevance ordering.
type SortOptions struct {
	Field     string        `json:"field,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Pagination selects a page of results. Page is 1-based.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Asset is a single catalog entry returned by the search backend.
type Asset struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Type         string            `json:"type"`
	Source       string            `json:"source,omitempty"`
	Owner        string            `json:"owner,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	QualityScore float64           `json:"qualityScore"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Score        float64           `json:"score,omitempty"`      // Relevance assigned by the backend
	Highlights   map[string]string `json:"highlights,omitempty"` // Field name -> highlighted fragment
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// FacetValue is one bucket of a facet.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facet groups result counts by a single field.
type Facet struct {
	Field  string       `json:"field"`
	Values []FacetValue `json:"values"`
}

// SuggestionSource identifies where a suggestion came from.
type SuggestionSource string

const (
	SuggestionSourceQuery   SuggestionSource = "query"
	SuggestionSourcePopular SuggestionSource = "popular"
	SuggestionSourceRecent  SuggestionSource = "recent"
	SuggestionSourceAsset   SuggestionSource = "asset"
	SuggestionSourceTag     SuggestionSource = "tag"
)

// Suggestion is a lightweight completion for the current input.
type Suggestion struct {
	Text   string           `json:"text"`
	Source SuggestionSource `json:"source"`
}

// SearchRequest is sent to the primary search entry point.
type SearchRequest struct {
	Query            string        `json:"query"`
	Filters          SearchFilters `json:"filters"`
	Pagination       Pagination    `json:"pagination"`
	Sort             SortOptions   `json:"sortOptions"`
	IncludeMetadata  bool          `json:"includeMetadata"`
	HighlightResults bool          `json:"highlightResults"`
}

// SearchResponse is returned by every search entry point.
type SearchResponse struct {
	Assets      []Asset      `json:"assets"`
	Total       int          `json:"total"`
	Facets      []Facet      `json:"facets,omitempty"`
	SearchID    string       `json:"searchId"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// SuggestRequest asks the backend for completions of a partial query.
type SuggestRequest struct {
	Query          string `json:"query"`
	MaxSuggestions int    `json:"maxSuggestions"`
	IncludePopular bool   `json:"includePopular"`
	IncludeRecent  bool   `json:"includeRecent"`
}

// SemanticRequest asks for results ranked by embedding similarity.
// Vector is optional; when empty the backend embeds Query itself.
type SemanticRequest struct {
	Query      string        `json:"query"`
	Vector     []float32     `json:"vector,omitempty"`
	Threshold  float32       `json:"threshold"`
	Filters    SearchFilters `json:"filters"`
	Pagination Pagination    `json:"pagination"`
}

// NaturalLanguageRequest carries free-form text for the backend to interpret.
type NaturalLanguageRequest struct {
	Query      string        `json:"query"`
	Filters    SearchFilters `json:"filters"`
	Pagination Pagination    `json:"pagination"`
}

// FacetedRequest is a search restricted to computing the named facets.
type FacetedRequest struct {
	SearchRequest
	FacetFields []string `json:"facetFields"`
}

// ResultSet is a resolved search response as held by the controller and cache.
type ResultSet struct {
	Assets        []Asset
	Total         int
	Facets        []Facet
	SearchID      string
	Suggestions   []Suggestion
	ExecutionTime time.Duration
}

// NewResultSet builds a ResultSet from a backend response.
func NewResultSet(resp *SearchResponse, elapsed time.Duration) *ResultSet {
	if resp == nil {
		return &ResultSet{ExecutionTime: elapsed}
	}
	return &ResultSet{
		Assets:        resp.Assets,
		Total:         resp.Total,
		Facets:        resp.Facets,
		SearchID:      resp.SearchID,
		Suggestions:   resp.Suggestions,
		ExecutionTime: elapsed,
	}
}

// Clone returns a deep copy of the result set.
func (r *ResultSet) Clone() *ResultSet {
	if r == nil {
		return nil
	}
	out := *r
	out.Assets = cloneAssets(r.Assets)
	out.Facets = cloneFacets(r.Facets)
	out.Suggestions = cloneSlice(r.Suggestions)
	return &out
}

// SavedSearch is a named, user-curated (query, filters) snapshot.
// Saved searches are never evicted implicitly.
type SavedSearch struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Query     string        `json:"query"`
	Filters   SearchFilters `json:"filters"`
	CreatedAt time.Time     `json:"createdAt"`
	LastUsed  time.Time     `json:"lastUsed"`
	IsShared  bool          `json:"isShared"`
	CreatedBy string        `json:"createdBy,omitempty"`
}

// Clone returns a deep copy of the saved search.
func (s SavedSearch) Clone() SavedSearch {
	s.Filters = s.Filters.Clone()
	return s
}

// SearchState is the consolidated view surfaced to consumers.
type SearchState struct {
	Query                string
	Filters              SearchFilters
	Sort                 SortOptions
	Results              *ResultSet // nil until a search has succeeded
	TotalResults         int
	Suggestions          []Suggestion
	Facets               []Facet
	IsSearching          bool
	IsSuggestionsLoading bool
	Error                string
	HasSearched          bool
	ExecutionTime        time.Duration
	SearchID             string
	RecentSearches       []string
	SavedSearches        []SavedSearch
}

// Clone returns a deep copy of the state so that snapshots can be handed
// to other goroutines.
func (s SearchState) Clone() SearchState {
	out := s
	out.Filters = s.Filters.Clone()
	out.Results = s.Results.Clone()
	out.Suggestions = cloneSlice(s.Suggestions)
	out.Facets = cloneFacets(s.Facets)
	out.RecentSearches = cloneSlice(s.RecentSearches)
	if s.SavedSearches != nil {
		out.SavedSearches = make([]SavedSearch, len(s.SavedSearches))
		for i, saved := range s.SavedSearches {
			out.SavedSearches[i] = saved.Clone()
		}
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneAssets(in []Asset) []Asset {
	if in == nil {
		return nil
	}
	out := make([]Asset, len(in))
	for i, a := range in {
		a.Tags = cloneSlice(a.Tags)
		a.Highlights = cloneMap(a.Highlights)
		a.Metadata = cloneMap(a.Metadata)
		out[i] = a
	}
	return out
}

func cloneFacets(in []Facet) []Facet {
	if in == nil {
		return nil
	}
	out := make([]Facet, len(in))
	for i, f := range in {
		f.Values = cloneSlice(f.Values)
		out[i] = f
	}
	return out
}
