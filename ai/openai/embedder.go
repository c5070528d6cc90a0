package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/semcache/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder    embeddings.Embedder
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:    embedder,
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.BaseDelay,
		logger:      slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// GetEmbedding generates a vector embedding for a single text string.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding", "length", len(text))

	var vector []float32
	operation := func() error {
		vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
		if err != nil {
			return err
		}
		if len(vectors) == 0 || len(vectors[0]) == 0 {
			return fmt.Errorf("%w: empty embedding vector", ai.ErrMalformedResponse)
		}
		vector = vectors[0]
		return nil
	}

	if err := ai.RetryWithBackoff(ctx, operation, e.maxAttempts, e.baseDelay); err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	return vector, nil
}
