// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder,
// ai.QueryInterpreter and ai.AIProvider for use in unit tests. The mocks
// allow tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	interpreter := mock.NewMockQueryInterpreter()
//	interpreter.InterpretFunc = func(ctx context.Context, text string) (*ai.InterpretedQuery, error) {
//	    return &ai.InterpretedQuery{Keywords: []string{"orders"}}, nil
//	}
//
//	// Check call counts
//	count := interpreter.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Bag-of-words vectors; texts sharing words score higher
//     under cosine similarity
//   - MockQueryInterpreter: Reads "type:", "tag:" and "owner:" prefixes as
//     criteria and every other word as a keyword
//   - MockProvider: Aggregates mock embedder and interpreter, counts Close
package mock
