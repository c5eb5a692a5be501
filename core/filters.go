package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// ScoreRange bounds an asset quality score, inclusive on both ends.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DateRange bounds a timestamp. A zero From or To leaves that side open.
type DateRange struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

// SearchFilters holds structured filter criteria.
// It is treated as an immutable value: use Apply to derive a modified copy.
type SearchFilters struct {
	AssetTypes []string          `json:"assetTypes,omitempty"`
	Sources    []string          `json:"sources,omitempty"`
	Quality    *ScoreRange       `json:"qualityScore,omitempty"`
	Created    *DateRange        `json:"createdDate,omitempty"`
	Updated    *DateRange        `json:"updatedDate,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Owners     []string          `json:"owners,omitempty"`
	Custom     map[string]string `json:"customFilters,omitempty"`
}

// FilterOption changes one criterion of a SearchFilters value.
type FilterOption func(*SearchFilters)

// WithAssetTypes replaces the asset type criterion.
func WithAssetTypes(types ...string) FilterOption {
	return func(f *SearchFilters) {
		f.AssetTypes = slices.Clone(types)
	}
}

// WithSources replaces the source criterion.
func WithSources(sources ...string) FilterOption {
	return func(f *SearchFilters) {
		f.Sources = slices.Clone(sources)
	}
}

// WithTags replaces the tag criterion.
func WithTags(tags ...string) FilterOption {
	return func(f *SearchFilters) {
		f.Tags = slices.Clone(tags)
	}
}

// WithOwners replaces the owner criterion.
func WithOwners(owners ...string) FilterOption {
	return func(f *SearchFilters) {
		f.Owners = slices.Clone(owners)
	}
}

// WithQualityRange restricts the quality score to [min, max].
func WithQualityRange(min, max float64) FilterOption {
	return func(f *SearchFilters) {
		f.Quality = &ScoreRange{Min: min, Max: max}
	}
}

// WithoutQualityRange removes the quality score criterion.
func WithoutQualityRange() FilterOption {
	return func(f *SearchFilters) {
		f.Quality = nil
	}
}

// WithCreatedBetween restricts the creation date.
func WithCreatedBetween(from, to time.Time) FilterOption {
	return func(f *SearchFilters) {
		f.Created = &DateRange{From: from, To: to}
	}
}

// WithUpdatedBetween restricts the last update date.
func WithUpdatedBetween(from, to time.Time) FilterOption {
	return func(f *SearchFilters) {
		f.Updated = &DateRange{From: from, To: to}
	}
}

// WithCustomFilter sets a free-form filter. An empty value removes the key.
func WithCustomFilter(key, value string) FilterOption {
	return func(f *SearchFilters) {
		if value == "" {
			delete(f.Custom, key)
			if len(f.Custom) == 0 {
				f.Custom = nil
			}
			return
		}
		if f.Custom == nil {
			f.Custom = make(map[string]string)
		}
		f.Custom[key] = value
	}
}

// Apply returns a copy of f with opts applied. f itself is left unchanged.
func (f SearchFilters) Apply(opts ...FilterOption) SearchFilters {
	out := f.Clone()
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

// Clone returns a deep copy of the filters.
func (f SearchFilters) Clone() SearchFilters {
	out := SearchFilters{
		AssetTypes: cloneSlice(f.AssetTypes),
		Sources:    cloneSlice(f.Sources),
		Tags:       cloneSlice(f.Tags),
		Owners:     cloneSlice(f.Owners),
		Custom:     cloneMap(f.Custom),
	}
	if f.Quality != nil {
		q := *f.Quality
		out.Quality = &q
	}
	if f.Created != nil {
		c := *f.Created
		out.Created = &c
	}
	if f.Updated != nil {
		u := *f.Updated
		out.Updated = &u
	}
	return out
}

// Normalized returns the canonical form of f: set-like lists are sorted and
// deduplicated, empty lists, maps and open date ranges become nil, and
// timestamps are UTC.
func (f SearchFilters) Normalized() SearchFilters {
	out := f.Clone()
	out.AssetTypes = normalizeSet(out.AssetTypes)
	out.Sources = normalizeSet(out.Sources)
	out.Tags = normalizeSet(out.Tags)
	out.Owners = normalizeSet(out.Owners)
	if len(out.Custom) == 0 {
		out.Custom = nil
	}
	out.Created = normalizeDateRange(out.Created)
	out.Updated = normalizeDateRange(out.Updated)
	return out
}

// IsZero reports whether no criterion is set.
func (f SearchFilters) IsZero() bool {
	n := f.Normalized()
	return n.AssetTypes == nil && n.Sources == nil && n.Quality == nil &&
		n.Created == nil && n.Updated == nil && n.Tags == nil &&
		n.Owners == nil && n.Custom == nil
}

// Canonical returns a deterministic JSON encoding of the normalized filters.
// Numbers and times are written as strings, so values JSON cannot represent
// (NaN, infinities, years past 9999) still encode, and map keys are sorted
// by encoding/json.
func (f SearchFilters) Canonical() []byte {
	n := f.Normalized()
	view := canonicalFilters{
		AssetTypes: n.AssetTypes,
		Sources:    n.Sources,
		Tags:       n.Tags,
		Owners:     n.Owners,
		Created:    canonicalDates(n.Created),
		Updated:    canonicalDates(n.Updated),
		Custom:     n.Custom,
	}
	if n.Quality != nil {
		view.Quality = []string{
			strconv.FormatFloat(n.Quality.Min, 'g', -1, 64),
			strconv.FormatFloat(n.Quality.Max, 'g', -1, 64),
		}
	}
	bs, err := json.Marshal(view)
	if err != nil {
		bs, _ = json.Marshal(fmt.Sprint(view))
	}
	return bs
}

type canonicalFilters struct {
	AssetTypes []string          `json:"assetTypes,omitempty"`
	Sources    []string          `json:"sources,omitempty"`
	Quality    []string          `json:"qualityScore,omitempty"`
	Created    []string          `json:"createdDate,omitempty"`
	Updated    []string          `json:"updatedDate,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Owners     []string          `json:"owners,omitempty"`
	Custom     map[string]string `json:"customFilters,omitempty"`
}

func canonicalDates(r *DateRange) []string {
	if r == nil {
		return nil
	}
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339Nano)
	}
	return []string{format(r.From), format(r.To)}
}

// Equal reports whether f and other select the same assets.
func (f SearchFilters) Equal(other SearchFilters) bool {
	return string(f.Canonical()) == string(other.Canonical())
}

func normalizeSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeDateRange(r *DateRange) *DateRange {
	if r == nil || (r.From.IsZero() && r.To.IsZero()) {
		return nil
	}
	out := &DateRange{}
	if !r.From.IsZero() {
		out.From = r.From.UTC()
	}
	if !r.To.IsZero() {
		out.To = r.To.UTC()
	}
	return out
}
