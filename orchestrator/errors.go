package orchestrator

import "errors"

var (
	// ErrCacheStoreRequired is returned when a semantic cache store is not provided.
	ErrCacheStoreRequired = errors.New("semantic cache store required")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrQueueRequired is returned when a cache-write queue is not provided.
	ErrQueueRequired = errors.New("cache-write queue required")
)
