package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/seekr/core"
)

// Facet fields the engine can compute.
const (
	FacetAssetType = "assetType"
	FacetSource    = "source"
	FacetTags      = "tags"
	FacetOwner     = "owner"
)

// DefaultFacetFields are computed when a request names none.
var DefaultFacetFields = []string{FacetAssetType, FacetSource, FacetTags, FacetOwner}

// DefaultPageSize applies when a request carries no page size.
const DefaultPageSize = 20

// hit is an asset under consideration together with its relevance.
type hit struct {
	asset   core.Asset
	score   float64
	matched []string
}

// matchesFilters reports whether a satisfies every criterion in f.
// Asset types, sources and owners match any listed value; tags must all be
// present; custom filters compare against asset metadata.
func matchesFilters(a *core.Asset, f *core.SearchFilters) bool {
	if len(f.AssetTypes) > 0 && !slices.Contains(f.AssetTypes, a.Type) {
		return false
	}
	if len(f.Sources) > 0 && !slices.Contains(f.Sources, a.Source) {
		return false
	}
	if len(f.Owners) > 0 && !slices.Contains(f.Owners, a.Owner) {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(a.Tags, tag) {
			return false
		}
	}
	if q := f.Quality; q != nil && (a.QualityScore < q.Min || a.QualityScore > q.Max) {
		return false
	}
	if !inDateRange(a.CreatedAt, f.Created) || !inDateRange(a.UpdatedAt, f.Updated) {
		return false
	}
	for key, value := range f.Custom {
		if a.Metadata[key] != value {
			return false
		}
	}
	return true
}

func inDateRange(t time.Time, r *core.DateRange) bool {
	if r == nil {
		return true
	}
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// scoreKeywords ranks a by the share of query words it contains. Name
// matches weigh double and a verbatim name match gets a boost. An empty
// word list matches everything with a zero score.
func scoreKeywords(a *core.Asset, queryWords []string) (float64, []string, bool) {
	if len(queryWords) == 0 {
		return 0, nil, true
	}
	doc := wordSet(append([]string{a.Name, a.Description, a.Type}, a.Tags...)...)
	matched := matchedWords(doc, queryWords)
	if len(matched) < len(queryWords) {
		return 0, nil, false
	}

	nameHits := len(matchedWords(wordSet(a.Name), queryWords))
	score := float64(len(matched)+nameHits) / float64(2*len(queryWords))
	if containsAllQueryWords(a.Name, queryWords) {
		score += 0.3
	}
	return score, matched, true
}

// sortHits orders hits in place. An empty field means relevance, highest
// first; other fields default to ascending. Ties break on asset ID.
func sortHits(hits []hit, sort core.SortOptions) error {
	var compare func(a, b *hit) int
	switch sort.Field {
	case "", "relevance", "score":
		compare = func(a, b *hit) int { return cmp.Compare(a.score, b.score) }
		if sort.Direction == "" {
			sort.Direction = core.SortDescending
		}
	case "name":
		compare = func(a, b *hit) int {
			return cmp.Compare(strings.ToLower(a.asset.Name), strings.ToLower(b.asset.Name))
		}
	case "qualityScore":
		compare = func(a, b *hit) int { return cmp.Compare(a.asset.QualityScore, b.asset.QualityScore) }
	case "createdAt":
		compare = func(a, b *hit) int { return a.asset.CreatedAt.Compare(b.asset.CreatedAt) }
	case "updatedAt":
		compare = func(a, b *hit) int { return a.asset.UpdatedAt.Compare(b.asset.UpdatedAt) }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSortField, sort.Field)
	}

	desc := sort.Direction == core.SortDescending
	slices.SortStableFunc(hits, func(a, b hit) int {
		c := compare(&a, &b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.asset.ID, b.asset.ID)
	})
	return nil
}

// computeFacets counts hits per value of each requested field. Values are
// ordered by count, highest first, then alphabetically.
func computeFacets(hits []hit, fields []string) ([]core.Facet, error) {
	facets := make([]core.Facet, 0, len(fields))
	for _, field := range fields {
		counts := make(map[string]int)
		for i := range hits {
			values, err := facetValues(&hits[i].asset, field)
			if err != nil {
				return nil, err
			}
			for _, v := range values {
				if v != "" {
					counts[v]++
				}
			}
		}

		facet := core.Facet{Field: field, Values: make([]core.FacetValue, 0, len(counts))}
		for value, count := range counts {
			facet.Values = append(facet.Values, core.FacetValue{Value: value, Count: count})
		}
		slices.SortFunc(facet.Values, func(a, b core.FacetValue) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.Value, b.Value)
		})
		facets = append(facets, facet)
	}
	return facets, nil
}

func facetValues(a *core.Asset, field string) ([]string, error) {
	switch field {
	case FacetAssetType:
		return []string{a.Type}, nil
	case FacetSource:
		return []string{a.Source}, nil
	case FacetOwner:
		return []string{a.Owner}, nil
	case FacetTags:
		return a.Tags, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFacetField, field)
}

// paginate returns the requested page. Pages are 1-based.
func paginate(hits []hit, p core.Pagination) []hit {
	page := max(p.Page, 1)
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	start := (page - 1) * size
	if start >= len(hits) {
		return nil
	}
	return hits[start:min(start+size, len(hits))]
}
