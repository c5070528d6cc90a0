package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/poiesic/semcache/core"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateResponseFunc is called by GenerateResponse if set.
	// If nil, uses default deterministic behavior.
	GenerateResponseFunc func(ctx context.Context, prompt string, contextChunks []*core.DocumentChunk) (string, error)

	callCount atomic.Int64
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateResponse produces a deterministic answer mentioning the prompt and
// the number of context chunks it was grounded in.
func (m *MockGenerator) GenerateResponse(ctx context.Context, prompt string, contextChunks []*core.DocumentChunk) (string, error) {
	m.callCount.Add(1)

	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, contextChunks)
	}

	return fmt.Sprintf("answer to %q from %d chunks", prompt, len(contextChunks)), nil
}

// CallCount returns the number of times GenerateResponse was called.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockGenerator) Reset() {
	m.callCount.Store(0)
	m.GenerateResponseFunc = nil
}
