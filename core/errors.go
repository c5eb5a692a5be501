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

import "errors"

// Domain validation errors
var (
	// ErrInvalidFilters indicates a SearchFilters value failed validation.
	ErrInvalidFilters = errors.New("invalid search filters")

	// ErrInvalidRange indicates a range whose lower bound exceeds its upper bound.
	ErrInvalidRange = errors.New("range lower bound exceeds upper bound")

	// ErrInvalidSavedSearch indicates a SavedSearch failed validation.
	ErrInvalidSavedSearch = errors.New("invalid saved search")

	// ErrEmptyName indicates the saved search Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyID indicates the saved search ID field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrInvalidSortDirection indicates a sort direction other than asc or desc.
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)
