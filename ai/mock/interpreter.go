package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/seekr/ai"
)

// MockQueryInterpreter is a test double for ai.QueryInterpreter.
// It allows custom behavior injection via function fields.
type MockQueryInterpreter struct {
	// InterpretFunc is called by Interpret if set.
	// If nil, uses the default keyword parser.
	InterpretFunc func(ctx context.Context, text string) (*ai.InterpretedQuery, error)

	mu        sync.Mutex
	callCount int
}

// NewMockQueryInterpreter creates a mock interpreter with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockQueryInterpreter() *MockQueryInterpreter {
	return &MockQueryInterpreter{}
}

// Interpret returns InterpretFunc's result, or a simple reading of text:
// "type:<t>", "tag:<t>" and "owner:<o>" words become criteria and every
// other word a keyword.
func (m *MockQueryInterpreter) Interpret(ctx context.Context, text string) (*ai.InterpretedQuery, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.InterpretFunc != nil {
		return m.InterpretFunc(ctx, text)
	}

	out := &ai.InterpretedQuery{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		key, value, found := strings.Cut(word, ":")
		switch {
		case found && key == "type":
			out.AssetTypes = append(out.AssetTypes, value)
		case found && key == "tag":
			out.Tags = append(out.Tags, value)
		case found && key == "owner":
			out.Owners = append(out.Owners, value)
		default:
			out.Keywords = append(out.Keywords, word)
		}
	}
	return out, nil
}

// CallCount returns the number of times Interpret was called.
func (m *MockQueryInterpreter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockQueryInterpreter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.InterpretFunc = nil
}
