package suggest

import "errors"

var (
	// ErrBackendRequired is returned when no backend is supplied.
	ErrBackendRequired = errors.New("suggestion backend is required")

	// ErrInvalidMinQueryLength is returned for a negative minimum query length.
	ErrInvalidMinQueryLength = errors.New("minimum query length must not be negative")

	// ErrInvalidMaxSuggestions is returned for a non-positive suggestion limit.
	ErrInvalidMaxSuggestions = errors.New("max suggestions must be positive")
)
