package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryInterpreter turns free-form search text into structured criteria.
// Implementations must be thread-safe for concurrent use.
type QueryInterpreter interface {
	// Interpret extracts keywords and filter criteria from text such as
	// "pii tables owned by finance with good quality".
	// Returns an empty InterpretedQuery if nothing can be extracted.
	Interpret(ctx context.Context, text string) (*InterpretedQuery, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// QueryInterpreter returns the natural-language query interpreter.
	QueryInterpreter() QueryInterpreter

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
