package memory

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/seekr/ai"
	"github.com/poiesic/seekr/backend"
	"github.com/poiesic/seekr/core"
)

const (
	// DefaultSimilarityThreshold is the minimum cosine similarity for a
	// semantic hit when a request carries no threshold.
	DefaultSimilarityThreshold = 0.60

	// DefaultMaxSuggestions applies when a suggest request carries no limit.
	DefaultMaxSuggestions = 5

	maxRecentQueries = 50
)

// Engine is an in-process search backend over a fixed asset catalog.
type Engine struct {
	mu          sync.RWMutex
	assets      []core.Asset
	vectors     map[string][]float32
	recent      []string
	popular     map[string]int
	embedder    ai.Embedder
	interpreter ai.QueryInterpreter
	latency     time.Duration
	logger      *slog.Logger
}

var _ backend.Backend = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine) error

// WithEmbedder enables semantic search.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithInterpreter enables structured natural-language search. Without an
// interpreter the text is searched as plain keywords.
func WithInterpreter(interpreter ai.QueryInterpreter) Option {
	return func(e *Engine) error {
		e.interpreter = interpreter
		return nil
	}
}

// WithProvider enables both semantic and natural-language search.
func WithProvider(provider ai.AIProvider) Option {
	return func(e *Engine) error {
		if provider != nil {
			e.embedder = provider.Embedder()
			e.interpreter = provider.QueryInterpreter()
		}
		return nil
	}
}

// WithLatency delays every call to mimic a remote service.
func WithLatency(d time.Duration) Option {
	return func(e *Engine) error {
		e.latency = max(d, 0)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine serving assets.
func NewEngine(assets []core.Asset, opts ...Option) (*Engine, error) {
	e := &Engine{
		vectors: make(map[string][]float32),
		popular: make(map[string]int),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "memory-backend")
	e.Add(assets...)
	return e, nil
}

// Add inserts assets into the catalog, replacing any with the same ID.
func (e *Engine) Add(assets ...core.Asset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, a := range assets {
		delete(e.vectors, a.ID)
		if i := slices.IndexFunc(e.assets, func(x core.Asset) bool { return x.ID == a.ID }); i >= 0 {
			e.assets[i] = a
			continue
		}
		e.assets = append(e.assets, a)
	}
}

// Len returns the number of assets in the catalog.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.assets)
}

// Search runs a keyword search.
func (e *Engine) Search(ctx context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.remember(req.Query)

	words := tokenizeAndFilter(req.Query)
	hits := e.keywordHits(words, &req.Filters)
	return e.respond(hits, &req, words, DefaultFacetFields)
}

// Suggest completes a partial query from recent and popular queries, asset
// names, tags and words found in the catalog.
func (e *Engine) Suggest(ctx context.Context, req core.SuggestRequest) ([]core.Suggestion, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	prefix := strings.ToLower(strings.TrimSpace(req.Query))
	if prefix == "" {
		return []core.Suggestion{}, nil
	}
	limit := req.MaxSuggestions
	if limit < 1 {
		limit = DefaultMaxSuggestions
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]core.Suggestion, 0, limit)
	seen := make(map[string]bool)
	add := func(text string, source core.SuggestionSource) bool {
		key := strings.ToLower(text)
		if seen[key] || !strings.HasPrefix(key, prefix) || key == prefix {
			return len(out) < limit
		}
		seen[key] = true
		out = append(out, core.Suggestion{Text: text, Source: source})
		return len(out) < limit
	}

	if req.IncludeRecent {
		for _, q := range e.recent {
			if !add(q, core.SuggestionSourceRecent) {
				return out, nil
			}
		}
	}
	if req.IncludePopular {
		for _, q := range e.popularQueries() {
			if !add(q, core.SuggestionSourcePopular) {
				return out, nil
			}
		}
	}
	for _, a := range e.assets {
		if !add(a.Name, core.SuggestionSourceAsset) {
			return out, nil
		}
	}
	for _, tag := range e.tags() {
		if !add(tag, core.SuggestionSourceTag) {
			return out, nil
		}
	}
	for _, word := range e.words() {
		if !add(word, core.SuggestionSourceQuery) {
			return out, nil
		}
	}
	return out, nil
}

// NaturalLanguageSearch interprets the text into keywords and filters, then
// searches by relevance. Explicit request filters take precedence.
func (e *Engine) NaturalLanguageSearch(ctx context.Context, req core.NaturalLanguageRequest) (*core.SearchResponse, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.remember(req.Query)

	query := req.Query
	filters := req.Filters
	if e.interpreter != nil {
		interpreted, err := e.interpreter.Interpret(ctx, req.Query)
		if err != nil {
			e.logger.Error("failed to interpret query", "query", req.Query, "err", err)
			return nil, err
		}
		query = interpreted.Query()
		filters = interpreted.Filters(req.Filters)
		e.logger.Debug("interpreted query", "query", req.Query, "keywords", query)
	}

	search := core.SearchRequest{Query: query, Filters: filters, Pagination: req.Pagination}
	words := tokenizeAndFilter(query)
	return e.respond(e.keywordHits(words, &filters), &search, words, DefaultFacetFields)
}

// SemanticSearch ranks assets by cosine similarity between the query vector
// and an embedding of each asset's text.
func (e *Engine) SemanticSearch(ctx context.Context, req core.SemanticRequest) (*core.SearchResponse, error) {
	if e.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.remember(req.Query)

	vector := req.Vector
	if len(vector) == 0 {
		var err error
		vector, err = e.embedder.EmbedText(ctx, req.Query)
		if err != nil {
			e.logger.Error("error generating embedding for query", "query", req.Query, "err", err)
			return nil, err
		}
	}

	vectors, err := e.assetVectors(ctx)
	if err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	e.mu.RLock()
	var hits []hit
	for _, a := range e.assets {
		if !matchesFilters(&a, &req.Filters) {
			continue
		}
		similarity := cosineSimilarity(vector, vectors[a.ID])
		if similarity >= threshold {
			hits = append(hits, hit{asset: a, score: float64(similarity)})
		}
	}
	e.mu.RUnlock()

	search := core.SearchRequest{Query: req.Query, Filters: req.Filters, Pagination: req.Pagination}
	return e.respond(hits, &search, tokenizeAndFilter(req.Query), DefaultFacetFields)
}

// FacetedSearch runs a keyword search computing only the requested facets.
func (e *Engine) FacetedSearch(ctx context.Context, req core.FacetedRequest) (*core.SearchResponse, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.remember(req.Query)

	fields := req.FacetFields
	if len(fields) == 0 {
		fields = DefaultFacetFields
	}
	words := tokenizeAndFilter(req.Query)
	hits := e.keywordHits(words, &req.Filters)
	return e.respond(hits, &req.SearchRequest, words, fields)
}

func (e *Engine) keywordHits(words []string, filters *core.SearchFilters) []hit {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var hits []hit
	for _, a := range e.assets {
		if !matchesFilters(&a, filters) {
			continue
		}
		score, matched, ok := scoreKeywords(&a, words)
		if ok {
			hits = append(hits, hit{asset: a, score: score, matched: matched})
		}
	}
	return hits
}

// respond sorts, facets and paginates hits into a response.
func (e *Engine) respond(hits []hit, req *core.SearchRequest, words []string, facetFields []string) (*core.SearchResponse, error) {
	if err := sortHits(hits, req.Sort); err != nil {
		return nil, err
	}
	facets, err := computeFacets(hits, facetFields)
	if err != nil {
		return nil, err
	}

	page := paginate(hits, req.Pagination)
	assets := make([]core.Asset, 0, len(page))
	for _, h := range page {
		a := h.asset
		a.Tags = slices.Clone(a.Tags)
		a.Score = h.score
		if req.IncludeMetadata {
			a.Metadata = maps.Clone(a.Metadata)
		} else {
			a.Metadata = nil
		}
		a.Highlights = nil
		if req.HighlightResults {
			a.Highlights = highlights(&a, words)
		}
		assets = append(assets, a)
	}

	resp := &core.SearchResponse{
		Assets:   assets,
		Total:    len(hits),
		Facets:   facets,
		SearchID: uuid.NewString(),
	}
	e.logger.Debug("search complete", "query", req.Query, "total", resp.Total, "search_id", resp.SearchID)
	return resp, nil
}

func highlights(a *core.Asset, words []string) map[string]string {
	out := make(map[string]string)
	if frag, ok := highlight(a.Name, words); ok {
		out["name"] = frag
	}
	if frag, ok := highlight(a.Description, words); ok {
		out["description"] = frag
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// assetVectors embeds every asset not embedded yet and returns the index.
func (e *Engine) assetVectors(ctx context.Context) (map[string][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ids, texts []string
	for _, a := range e.assets {
		if _, ok := e.vectors[a.ID]; ok {
			continue
		}
		ids = append(ids, a.ID)
		texts = append(texts, strings.Join(append([]string{a.Name, a.Description}, a.Tags...), " "))
	}
	if len(texts) > 0 {
		e.logger.Debug("embedding catalog", "count", len(texts))
		embeddings, err := e.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			e.logger.Error("failed to embed catalog", "count", len(texts), "err", err)
			return nil, err
		}
		if len(embeddings) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d assets", len(embeddings), len(texts))
		}
		for i, id := range ids {
			e.vectors[id] = embeddings[i]
		}
	}
	return maps.Clone(e.vectors), nil
}

// remember feeds the recent and popular query lists used for suggestions.
func (e *Engine) remember(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.popular[query]++
	e.recent = slices.DeleteFunc(e.recent, func(q string) bool { return q == query })
	e.recent = slices.Insert(e.recent, 0, query)
	if len(e.recent) > maxRecentQueries {
		e.recent = e.recent[:maxRecentQueries]
	}
}

// popularQueries returns remembered queries, most frequent first.
// Caller must hold e.mu.
func (e *Engine) popularQueries() []string {
	queries := slices.Collect(maps.Keys(e.popular))
	slices.SortFunc(queries, func(a, b string) int {
		if c := cmp.Compare(e.popular[b], e.popular[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return queries
}

// tags returns the distinct catalog tags in sorted order.
// Caller must hold e.mu.
func (e *Engine) tags() []string {
	var tags []string
	for _, a := range e.assets {
		tags = append(tags, a.Tags...)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// words returns the distinct filtered words of asset names and descriptions.
// Caller must hold e.mu.
func (e *Engine) words() []string {
	set := make(map[string]bool)
	for _, a := range e.assets {
		for w := range wordSet(a.Name, a.Description) {
			set[w] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

func (e *Engine) wait(ctx context.Context) error {
	if e.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
