package ai

import (
	"context"

	"github.com/poiesic/semcache/core"
)

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// GetEmbedding generates a vector embedding for a single text string.
	// The vector has the system-wide embedding dimension. Returns
	// ErrMalformedResponse if the provider answers with an empty vector, or
	// a transient error after the retry policy is exhausted.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer from a prompt grounded in document chunks.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateResponse answers the prompt using only the provided context
	// chunks. Chunk order is the retrieval ranking and is preserved in the
	// generation prompt.
	GenerateResponse(ctx context.Context, prompt string, contextChunks []*core.DocumentChunk) (string, error)
}

// Provider aggregates the model services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and Generator
// instances sharing configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
