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


package controller

import "errors"

var (
	// ErrBackendRequired is returned when no search backend is supplied.
	ErrBackendRequired = errors.New("search backend is required")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("controller is closed")

	// ErrSuperseded is returned by a search whose response arrived after a
	// newer request on the same channel. Its results were discarded.
	ErrSuperseded = errors.New("search superseded by a newer request")

	// ErrSearchFailed wraps backend errors returned by search operations.
	ErrSearchFailed = errors.New("search failed")

	// ErrSavedSearchesDisabled is returned by saved search operations when
	// the controller has no saved search manager.
	ErrSavedSearchesDisabled = errors.New("saved searches are not configured")

	// ErrInvalidShare is returned when a share string cannot be decoded.
	ErrInvalidShare = errors.New("invalid share string")

	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("invalid controller option")
)
