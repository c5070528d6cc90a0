package storage

import (
	"context"

	"github.com/poiesic/semcache/core"
)

// DocumentStore persists document chunks and answers vector similarity
// queries over them. Implementations must be thread-safe and support
// concurrent access.
type DocumentStore interface {
	// StoreChunk upserts a chunk by its id.
	StoreChunk(ctx context.Context, chunk *core.DocumentChunk) error

	// SearchByVector returns up to topK chunks ranked by descending
	// similarity to the query vector. Scores are normalized cosine
	// similarities.
	SearchByVector(ctx context.Context, vector []float32, topK int) ([]core.SimilarityResult[*core.DocumentChunk], error)

	// ListChunkIDsByDocumentID returns the ids of every chunk tagged with
	// the given document id, paginated internally until exhausted.
	ListChunkIDsByDocumentID(ctx context.Context, documentID string) ([]string, error)

	// DeleteByDocumentID removes every chunk tagged with the given document
	// id, deleting page by page until none remain.
	DeleteByDocumentID(ctx context.Context, documentID string) error

	// Close closes the store and releases resources.
	Close() error
}

// SemanticCacheStore persists cached answers keyed by query embedding.
// Implementations must be thread-safe and support concurrent access.
type SemanticCacheStore interface {
	// Store upserts an entry, honoring its ExpiresAt as the TTL. An entry
	// whose expiry has already elapsed is stored with a default TTL instead
	// of being written already dead.
	Store(ctx context.Context, entry *core.CacheEntry) error

	// SearchNearest returns the single live entry closest to the query
	// vector with its similarity score, or nil when the cache is empty.
	SearchNearest(ctx context.Context, vector []float32) (*core.SimilarityResult[*core.CacheEntry], error)

	// InvalidateByChunkIds deletes every entry whose source-chunk-id set
	// intersects ids, paginated internally until exhausted.
	InvalidateByChunkIds(ctx context.Context, ids []string) error

	// Close closes the store and releases resources.
	Close() error
}
