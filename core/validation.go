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


package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidateFilters validates SearchFilters according to domain rules.
//
// Validation rules:
//   - Quality range bounds must be finite with Min <= Max
//   - Date bounds must fall in years 0 through 9999
//   - Date ranges with both bounds set must have From <= To
//
// NOT validated (interpreted by the backend):
//   - Asset type, source, tag and owner values
//   - Custom filter keys and values
func ValidateFilters(filters SearchFilters) error {
	if q := filters.Quality; q != nil && (!finite(q.Min) || !finite(q.Max) || q.Min > q.Max) {
		return fmt.Errorf("%w: quality score: %w", ErrInvalidFilters, ErrInvalidRange)
	}
	if err := validateDateRange(filters.Created); err != nil {
		return fmt.Errorf("%w: created date: %w", ErrInvalidFilters, err)
	}
	if err := validateDateRange(filters.Updated); err != nil {
		return fmt.Errorf("%w: updated date: %w", ErrInvalidFilters, err)
	}
	return nil
}

// ValidateSavedSearch validates a SavedSearch according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Name must not be blank
//   - Filters must pass ValidateFilters
//
// The query may be empty: a saved search can capture filters alone.
func ValidateSavedSearch(saved *SavedSearch) error {
	if saved == nil {
		return fmt.Errorf("%w: saved search is nil", ErrInvalidSavedSearch)
	}
	if saved.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSavedSearch, ErrEmptyID)
	}
	if strings.TrimSpace(saved.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSavedSearch, ErrEmptyName)
	}
	if err := ValidateFilters(saved.Filters); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSavedSearch, err)
	}
	return nil
}

// ValidateSort validates that a SortOptions has a known direction.
// An empty direction is accepted and means the backend default.
func ValidateSort(sort SortOptions) error {
	switch sort.Direction {
	case "", SortAscending, SortDescending:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSortDirection, sort.Direction)
}

// IsBlank reports whether a query contains only whitespace.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

func validateDateRange(r *DateRange) error {
	if r == nil {
		return nil
	}
	if !representable(r.From) || !representable(r.To) {
		return ErrInvalidRange
	}
	if r.From.IsZero() || r.To.IsZero() {
		return nil
	}
	if r.From.After(r.To) {
		return ErrInvalidRange
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// representable reports whether t can be written as an RFC 3339 timestamp.
func representable(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	year := t.UTC().Year()
	return year >= 0 && year <= 9999
}
