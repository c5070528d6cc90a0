// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package semcache is a semantically cached question-answering engine over
// ingested documents.
//
// The System type wires together the storage backend, the AI provider, the
// background task queues, and the chat and ingest front doors. Construct one
// with New, call Start to launch the queue consumers, and Close when done:
//
//	system, err := semcache.New("/var/lib/semcache")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer system.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	system.Start(ctx)
//
//	jobID, err := system.Ingest(ctx, "doc-1", "notes.txt", content)
//	response, err := system.ProcessChat(ctx, "what do my notes say about X?")
package semcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/semcache/ai"
	"github.com/poiesic/semcache/ai/openai"
	"github.com/poiesic/semcache/chunking"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/ingest"
	"github.com/poiesic/semcache/jobs"
	"github.com/poiesic/semcache/orchestrator"
	"github.com/poiesic/semcache/queue"
	"github.com/poiesic/semcache/retrieval"
	"github.com/poiesic/semcache/storage"
	"github.com/poiesic/semcache/storage/badger"
)

// System owns every component of the engine: the badger backend, the two
// stores, the AI provider, the job store, and the two background queues with
// their consumers. Ingest work and cache writes ride separate queues so a
// long ingestion cannot delay cache population.
type System struct {
	backend    *badger.Backend
	documents  storage.DocumentStore
	cache      storage.SemanticCacheStore
	provider   ai.Provider
	jobStore   *jobs.Store
	ingestQ    *queue.TaskQueue
	cacheQ     *queue.TaskQueue
	ingestProc *queue.Processor
	cacheProc  *queue.Processor
	pipeline   *ingest.Pipeline
	chat       *orchestrator.ChatOrchestrator
	logger     *slog.Logger

	wg      sync.WaitGroup
	started bool
}

// Option configures a System.
type Option func(*systemOptions)

type systemOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	chunker       chunking.Strategy
	hitThreshold  float64
	threshold     float64
	topK          int
	cacheTTL      time.Duration
	queueCapacity int
	jobCapacity   int
	inMemory      bool
	logger        *slog.Logger
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// provider. Ignored when WithAIProvider is also given.
func WithAIConfig(config *ai.Config) Option {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. The system takes ownership and closes it.
func WithAIProvider(provider ai.Provider) Option {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithChunker sets the document chunking strategy.
// Default is the sentence-aware strategy.
func WithChunker(chunker chunking.Strategy) Option {
	return func(o *systemOptions) {
		o.chunker = chunker
	}
}

// WithHitThreshold sets the minimum similarity for a semantic cache hit.
// Default is orchestrator.DefaultHitThreshold.
func WithHitThreshold(threshold float64) Option {
	return func(o *systemOptions) {
		o.hitThreshold = threshold
	}
}

// WithRetrieval sets the top-K candidate count and minimum similarity for
// chunk retrieval. Defaults are retrieval.DefaultTopK and
// retrieval.DefaultThreshold.
func WithRetrieval(topK int, threshold float64) Option {
	return func(o *systemOptions) {
		o.topK = topK
		o.threshold = threshold
	}
}

// WithCacheTTL sets the lifetime of cached answers.
// Default is orchestrator.DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *systemOptions) {
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithQueueCapacity sets the capacity of each background queue.
// Default is queue.DefaultCapacity. Enqueueing blocks when a queue is full.
func WithQueueCapacity(capacity int) Option {
	return func(o *systemOptions) {
		if capacity > 0 {
			o.queueCapacity = capacity
		}
	}
}

// WithJobCapacity sets how many ingest jobs are tracked before the oldest
// are evicted. Default is jobs.DefaultCapacity.
func WithJobCapacity(capacity int) Option {
	return func(o *systemOptions) {
		if capacity > 0 {
			o.jobCapacity = capacity
		}
	}
}

// WithInMemory opens the storage backend without a backing file.
// Intended for tests and ephemeral deployments.
func WithInMemory() Option {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *systemOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a System rooted at filePath. Call Start before serving
// requests; without a running Start the background queues have no consumers
// and ingest jobs stay pending.
func New(filePath string, opts ...Option) (*System, error) {
	// Apply options
	options := &systemOptions{
		aiConfig:      ai.DefaultConfig(),
		chunker:       chunking.NewSentenceAware(),
		hitThreshold:  orchestrator.DefaultHitThreshold,
		threshold:     retrieval.DefaultThreshold,
		topK:          retrieval.DefaultTopK,
		cacheTTL:      orchestrator.DefaultCacheTTL,
		queueCapacity: queue.DefaultCapacity,
		jobCapacity:   jobs.DefaultCapacity,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create stores
	documents, err := badger.NewDocumentStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	cache, err := badger.NewCacheStore(backend, badger.WithDefaultTTL(options.cacheTTL))
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			cache.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	system := &System{
		backend:   backend,
		documents: documents,
		cache:     cache,
		provider:  provider,
		jobStore:  jobs.NewStore(jobs.WithCapacity(options.jobCapacity)),
		ingestQ:   queue.NewTaskQueue(options.queueCapacity),
		cacheQ:    queue.NewTaskQueue(options.queueCapacity),
		logger:    options.logger,
	}

	cleanup := func() {
		provider.Close()
		cache.Close()
		documents.Close()
		backend.Close()
	}

	system.ingestProc, err = queue.NewProcessor(system.ingestQ, "ingest", queue.WithLogger(options.logger))
	if err != nil {
		cleanup()
		return nil, err
	}
	system.cacheProc, err = queue.NewProcessor(system.cacheQ, "cache-write", queue.WithLogger(options.logger))
	if err != nil {
		cleanup()
		return nil, err
	}

	retriever, err := retrieval.NewRetriever(documents, provider.Embedder(),
		retrieval.WithTopK(options.topK),
		retrieval.WithThreshold(options.threshold),
		retrieval.WithLogger(options.logger),
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	system.chat, err = orchestrator.NewChatOrchestrator(cache, retriever, provider, system.cacheQ,
		orchestrator.WithHitThreshold(options.hitThreshold),
		orchestrator.WithCacheTTL(options.cacheTTL),
		orchestrator.WithLogger(options.logger),
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	system.pipeline, err = ingest.NewPipeline(documents, cache, provider, system.jobStore, system.ingestQ,
		ingest.WithChunker(options.chunker),
		ingest.WithLogger(options.logger),
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	return system, nil
}

// Start launches the queue consumers. They run until ctx is canceled.
// Start may be called at most once.
func (s *System) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.ingestProc.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.cacheProc.Run(ctx)
	}()
}

// ProcessChat answers a prompt, serving from the semantic cache when a
// sufficiently similar question was answered before.
func (s *System) ProcessChat(ctx context.Context, prompt string) (*orchestrator.ChatResponse, error) {
	return s.chat.ProcessChat(ctx, prompt)
}

// Ingest queues a document for chunking and embedding. Returns the id of
// the job tracking its progress.
func (s *System) Ingest(ctx context.Context, documentID, fileName, content string) (string, error) {
	return s.pipeline.Ingest(ctx, documentID, fileName, content)
}

// Reingest replaces a document's chunks, invalidating cached answers
// grounded in the old ones first.
func (s *System) Reingest(ctx context.Context, documentID, fileName, content string) (string, error) {
	return s.pipeline.Reingest(ctx, documentID, fileName, content)
}

// GetJob returns a snapshot of an ingest job's state.
func (s *System) GetJob(id string) (*core.IngestJob, bool) {
	return s.jobStore.GetJob(id)
}

// DocumentStore exposes the underlying document store.
func (s *System) DocumentStore() storage.DocumentStore {
	return s.documents
}

// CacheStore exposes the underlying semantic cache store.
func (s *System) CacheStore() storage.SemanticCacheStore {
	return s.cache
}

// Close waits for the queue consumers to stop and releases every resource.
// Cancel the Start context before calling Close.
func (s *System) Close() error {
	s.wg.Wait()

	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	// Close stores
	if err := s.cache.Close(); err != nil {
		s.logger.Error("error closing cache store", "err", err)
		return err
	}
	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document store", "err", err)
		return err
	}

	// Close backend
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
