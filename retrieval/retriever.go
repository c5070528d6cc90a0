package retrieval

import (
	"context"
	"log/slog"

	"github.com/poiesic/semcache/ai"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/storage"
)

const (
	// DefaultTopK is the number of nearest-neighbor candidates fetched from
	// the document store before threshold filtering.
	DefaultTopK = 5

	// DefaultThreshold is the minimum cosine similarity a candidate must
	// reach to be included in the retrieval result.
	DefaultThreshold = 0.75
)

// Retriever finds document chunks relevant to a query.
type Retriever struct {
	documents storage.DocumentStore
	embedder  ai.Embedder
	topK      int
	threshold float64
	logger    *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithTopK sets the number of candidates fetched before filtering.
// Default is DefaultTopK. Values below 1 are ignored.
func WithTopK(topK int) Option {
	return func(r *Retriever) error {
		if topK >= 1 {
			r.topK = topK
		}
		return nil
	}
}

// WithThreshold sets the minimum similarity for a candidate to be returned.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(r *Retriever) error {
		r.threshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever over the given document store.
func NewRetriever(documents storage.DocumentStore, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if documents == nil {
		return nil, ErrDocumentStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		documents: documents,
		embedder:  embedder,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "retriever"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve embeds the query and returns the chunks relevant to it, ranked by
// similarity. Candidates below the threshold are dropped; the remaining order
// is the store's ranking.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*core.DocumentChunk, error) {
	vector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	return r.RetrieveByVector(ctx, vector)
}

// RetrieveByVector returns the chunks relevant to an already-computed query
// embedding. Callers that embed the query for other purposes (such as a cache
// lookup) use this to avoid a second embedding call.
func (r *Retriever) RetrieveByVector(ctx context.Context, vector []float32) ([]*core.DocumentChunk, error) {
	matches, err := r.documents.SearchByVector(ctx, vector, r.topK)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	// Threshold filter preserves ranking order
	chunks := make([]*core.DocumentChunk, 0, len(matches))
	for _, match := range matches {
		if match.Score >= r.threshold {
			chunks = append(chunks, match.Item)
		}
	}

	r.logger.Debug("retrieved chunks", "candidates", len(matches), "aboveThreshold", len(chunks), "threshold", r.threshold)
	return chunks, nil
}
