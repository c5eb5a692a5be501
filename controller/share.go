package controller

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/seekr/core"
)

// Share parameter names.
const (
	shareQuery       = "q"
	shareType        = "type"
	shareSource      = "source"
	shareTag         = "tag"
	shareOwner       = "owner"
	shareQualityMin  = "quality_min"
	shareQualityMax  = "quality_max"
	shareCreatedFrom = "created_from"
	shareCreatedTo   = "created_to"
	shareUpdatedFrom = "updated_from"
	shareUpdatedTo   = "updated_to"
	shareCustom      = "cf."
)

// EncodeShare serializes a query and its filters into a URL query string.
// Logically equal filters always produce the same string.
func EncodeShare(query string, filters core.SearchFilters) string {
	f := filters.Normalized()
	v := url.Values{}
	if !core.IsBlank(query) {
		v.Set(shareQuery, query)
	}
	for _, t := range f.AssetTypes {
		v.Add(shareType, t)
	}
	for _, s := range f.Sources {
		v.Add(shareSource, s)
	}
	for _, t := range f.Tags {
		v.Add(shareTag, t)
	}
	for _, o := range f.Owners {
		v.Add(shareOwner, o)
	}
	if f.Quality != nil {
		v.Set(shareQualityMin, strconv.FormatFloat(f.Quality.Min, 'g', -1, 64))
		v.Set(shareQualityMax, strconv.FormatFloat(f.Quality.Max, 'g', -1, 64))
	}
	encodeDateRange(v, f.Created, shareCreatedFrom, shareCreatedTo)
	encodeDateRange(v, f.Updated, shareUpdatedFrom, shareUpdatedTo)
	for key, value := range f.Custom {
		v.Set(shareCustom+key, value)
	}
	return v.Encode()
}

// DecodeShare parses a string produced by EncodeShare. A leading "?" is
// ignored, as are unknown parameters.
func DecodeShare(encoded string) (string, core.SearchFilters, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(encoded, "?"))
	if err != nil {
		return "", core.SearchFilters{}, fmt.Errorf("%w: %w", ErrInvalidShare, err)
	}

	f := core.SearchFilters{
		AssetTypes: v[shareType],
		Sources:    v[shareSource],
		Tags:       v[shareTag],
		Owners:     v[shareOwner],
	}

	if v.Has(shareQualityMin) || v.Has(shareQualityMax) {
		r := core.ScoreRange{Min: 0, Max: 1}
		if r.Min, err = parseFloat(v, shareQualityMin, r.Min); err != nil {
			return "", core.SearchFilters{}, err
		}
		if r.Max, err = parseFloat(v, shareQualityMax, r.Max); err != nil {
			return "", core.SearchFilters{}, err
		}
		f.Quality = &r
	}
	if f.Created, err = decodeDateRange(v, shareCreatedFrom, shareCreatedTo); err != nil {
		return "", core.SearchFilters{}, err
	}
	if f.Updated, err = decodeDateRange(v, shareUpdatedFrom, shareUpdatedTo); err != nil {
		return "", core.SearchFilters{}, err
	}

	for key, values := range v {
		if name, ok := strings.CutPrefix(key, shareCustom); ok && name != "" && len(values) > 0 {
			f = f.Apply(core.WithCustomFilter(name, values[0]))
		}
	}

	f = f.Normalized()
	if err := core.ValidateFilters(f); err != nil {
		return "", core.SearchFilters{}, fmt.Errorf("%w: %w", ErrInvalidShare, err)
	}
	return v.Get(shareQuery), f, nil
}

func encodeDateRange(v url.Values, r *core.DateRange, fromKey, toKey string) {
	if r == nil {
		return
	}
	if !r.From.IsZero() {
		v.Set(fromKey, r.From.Format(time.RFC3339Nano))
	}
	if !r.To.IsZero() {
		v.Set(toKey, r.To.Format(time.RFC3339Nano))
	}
}

func decodeDateRange(v url.Values, fromKey, toKey string) (*core.DateRange, error) {
	if !v.Has(fromKey) && !v.Has(toKey) {
		return nil, nil
	}
	r := &core.DateRange{}
	for key, dst := range map[string]*time.Time{fromKey: &r.From, toKey: &r.To} {
		raw := v.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidShare, key, err)
		}
		*dst = t.UTC()
	}
	return r, nil
}

func parseFloat(v url.Values, key string, fallback float64) (float64, error) {
	raw := v.Get(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidShare, key, err)
	}
	return f, nil
}
