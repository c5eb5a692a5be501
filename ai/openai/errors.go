package openai

import "errors"

var (
	// ErrEmptyEmbedding is returned when the service answers without a vector.
	ErrEmptyEmbedding = errors.New("embedding service returned no vectors")

	// ErrDimensionMismatch is returned when vectors in one batch differ in length.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")
)
