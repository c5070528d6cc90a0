package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/semcache/ai"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/queue"
	"github.com/poiesic/semcache/retrieval"
	"github.com/poiesic/semcache/storage"
)

const (
	// DefaultHitThreshold is the minimum similarity between a prompt
	// embedding and a cached entry for the entry to answer the prompt.
	DefaultHitThreshold = 0.85

	// DefaultCacheTTL is the lifetime assigned to freshly cached answers.
	DefaultCacheTTL = 24 * time.Hour
)

// CacheStatus reports whether a response was served from the semantic cache.
type CacheStatus string

const (
	// CacheHit marks a response answered from the semantic cache.
	CacheHit CacheStatus = "HIT"

	// CacheMiss marks a response generated fresh from retrieved chunks.
	CacheMiss CacheStatus = "MISS"
)

// ChatResponse is the result of processing a chat prompt.
type ChatResponse struct {
	// Answer is the response text, cached or freshly generated.
	Answer string `json:"answer"`

	// CacheStatus is CacheHit or CacheMiss.
	CacheStatus CacheStatus `json:"cacheStatus"`

	// SourceChunkIDs are the ids of the chunks the answer was grounded in.
	SourceChunkIDs []string `json:"sourceChunkIds"`
}

// ChatOrchestrator handles chat prompts with a semantic cache-aside protocol.
type ChatOrchestrator struct {
	cache        storage.SemanticCacheStore
	retriever    *retrieval.Retriever
	embedder     ai.Embedder
	generator    ai.Generator
	cacheQueue   *queue.TaskQueue
	hitThreshold float64
	cacheTTL     time.Duration
	logger       *slog.Logger
}

// Option configures a ChatOrchestrator.
type Option func(*ChatOrchestrator) error

// WithHitThreshold sets the minimum similarity for a cache hit.
// Default is DefaultHitThreshold.
func WithHitThreshold(threshold float64) Option {
	return func(o *ChatOrchestrator) error {
		o.hitThreshold = threshold
		return nil
	}
}

// WithCacheTTL sets the lifetime of freshly cached answers.
// Default is DefaultCacheTTL. Non-positive values are ignored.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *ChatOrchestrator) error {
		if ttl > 0 {
			o.cacheTTL = ttl
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *ChatOrchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewChatOrchestrator creates a new orchestrator. The cacheQueue receives the
// deferred cache writes; its consumer must be running for entries to land.
func NewChatOrchestrator(
	cache storage.SemanticCacheStore,
	retriever *retrieval.Retriever,
	provider ai.Provider,
	cacheQueue *queue.TaskQueue,
	opts ...Option,
) (*ChatOrchestrator, error) {
	if cache == nil {
		return nil, ErrCacheStoreRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if cacheQueue == nil {
		return nil, ErrQueueRequired
	}

	o := &ChatOrchestrator{
		cache:        cache,
		retriever:    retriever,
		embedder:     provider.Embedder(),
		generator:    provider.Generator(),
		cacheQueue:   cacheQueue,
		hitThreshold: DefaultHitThreshold,
		cacheTTL:     DefaultCacheTTL,
		logger:       slog.Default().With("component", "orchestrator"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// ProcessChat answers a prompt. The prompt is embedded exactly once; the
// embedding serves both the cache lookup and, on a miss, chunk retrieval.
func (o *ChatOrchestrator) ProcessChat(ctx context.Context, prompt string) (*ChatResponse, error) {
	if err := core.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	vector, err := o.embedder.GetEmbedding(ctx, prompt)
	if err != nil {
		o.logger.Error("error embedding prompt", "err", err)
		return nil, err
	}

	// Cache lookup
	nearest, err := o.cache.SearchNearest(ctx, vector)
	if err != nil {
		o.logger.Error("error probing semantic cache", "err", err)
		return nil, err
	}
	if nearest != nil && nearest.Score >= o.hitThreshold {
		o.logger.Info("cache hit", "entryID", nearest.Item.ID, "score", nearest.Score)
		return &ChatResponse{
			Answer:         nearest.Item.Answer,
			CacheStatus:    CacheHit,
			SourceChunkIDs: nearest.Item.SourceChunkIDs,
		}, nil
	}

	// Miss: retrieve context and generate a fresh answer
	chunks, err := o.retriever.RetrieveByVector(ctx, vector)
	if err != nil {
		o.logger.Error("error retrieving context chunks", "err", err)
		return nil, err
	}

	answer, err := o.generator.GenerateResponse(ctx, prompt, chunks)
	if err != nil {
		o.logger.Error("error generating response", "err", err)
		return nil, err
	}

	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
	}

	if err := o.enqueueCacheWrite(ctx, prompt, answer, vector, chunkIDs); err != nil {
		// The answer is already in hand; a full queue or canceled context
		// only costs us the cache entry.
		o.logger.Warn("failed to enqueue cache write", "err", err)
	}

	o.logger.Info("cache miss", "contextChunks", len(chunks))
	return &ChatResponse{
		Answer:         answer,
		CacheStatus:    CacheMiss,
		SourceChunkIDs: chunkIDs,
	}, nil
}

// enqueueCacheWrite hands the cache entry to the background queue. The entry
// id is derived from the prompt text, so repeating the same prompt upserts
// one entry instead of accumulating duplicates.
func (o *ChatOrchestrator) enqueueCacheWrite(ctx context.Context, prompt, answer string, vector []float32, chunkIDs []string) error {
	now := time.Now().UTC()
	entry := &core.CacheEntry{
		ID:             core.IDFromContent(prompt),
		Prompt:         prompt,
		Answer:         answer,
		Vector:         vector,
		SourceChunkIDs: chunkIDs,
		CreatedAt:      now,
		ExpiresAt:      now.Add(o.cacheTTL),
	}

	return o.cacheQueue.Enqueue(ctx, func(taskCtx context.Context) error {
		return o.cache.Store(taskCtx, entry)
	})
}
