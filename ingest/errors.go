package ingest

import "errors"

var (
	// ErrDocumentStoreRequired is returned when a document store is not provided.
	ErrDocumentStoreRequired = errors.New("document store required")

	// ErrCacheStoreRequired is returned when a semantic cache store is not provided.
	ErrCacheStoreRequired = errors.New("semantic cache store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrJobStoreRequired is returned when a job store is not provided.
	ErrJobStoreRequired = errors.New("job store required")

	// ErrQueueRequired is returned when an ingest queue is not provided.
	ErrQueueRequired = errors.New("ingest queue required")
)
