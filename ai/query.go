package ai

import (
	"strings"

	"github.com/poiesic/seekr/core"
)

// AssetTypes lists the asset categories an interpreter may report.
var AssetTypes = []string{
	"api",
	"dashboard",
	"dataset",
	"model",
	"pipeline",
	"report",
	"table",
	"view",
}

// InterpretedQuery is the structured reading of a natural-language query.
type InterpretedQuery struct {
	// Keywords are the words left to match against asset text, lowercase.
	Keywords []string

	// AssetTypes restricts results to the named asset categories.
	AssetTypes []string

	// Tags restricts results to assets carrying all of these tags.
	Tags []string

	// Owners restricts results to assets owned by any of these owners.
	Owners []string

	// MinQuality is a lower bound on the quality score, or 0 for none.
	MinQuality float64
}

// Query joins the keywords back into a search string.
func (q *InterpretedQuery) Query() string {
	return strings.Join(q.Keywords, " ")
}

// Filters merges the interpreted criteria into base. Criteria already
// present in base take precedence over interpreted ones.
func (q *InterpretedQuery) Filters(base core.SearchFilters) core.SearchFilters {
	var opts []core.FilterOption
	if len(base.AssetTypes) == 0 && len(q.AssetTypes) > 0 {
		opts = append(opts, core.WithAssetTypes(q.AssetTypes...))
	}
	if len(base.Tags) == 0 && len(q.Tags) > 0 {
		opts = append(opts, core.WithTags(q.Tags...))
	}
	if len(base.Owners) == 0 && len(q.Owners) > 0 {
		opts = append(opts, core.WithOwners(q.Owners...))
	}
	if base.Quality == nil && q.MinQuality > 0 {
		opts = append(opts, core.WithQualityRange(q.MinQuality, 1))
	}
	return base.Apply(opts...)
}
