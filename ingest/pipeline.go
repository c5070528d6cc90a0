package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/semcache/ai"
	"github.com/poiesic/semcache/chunking"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/jobs"
	"github.com/poiesic/semcache/queue"
	"github.com/poiesic/semcache/storage"
)

// DefaultFanOut is the number of chunks embedded and stored concurrently per
// job. The bound applies per job, not across jobs; the ingest queue already
// serializes jobs through its single consumer.
const DefaultFanOut = 5

// Pipeline turns documents into embedded chunks via background jobs.
type Pipeline struct {
	documents storage.DocumentStore
	cache     storage.SemanticCacheStore
	embedder  ai.Embedder
	chunker   chunking.Strategy
	jobs      *jobs.Store
	queue     *queue.TaskQueue
	fanOut    int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithChunker sets the chunking strategy.
// Default is the sentence-aware strategy.
func WithChunker(chunker chunking.Strategy) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithFanOut sets the per-job concurrency for embedding and storing chunks.
// Default is DefaultFanOut, with a minimum of 1.
func WithFanOut(fanOut int) Option {
	return func(p *Pipeline) error {
		if fanOut < 1 {
			fanOut = 1
		}
		p.fanOut = fanOut
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingest pipeline. The taskQueue receives the
// background work; its consumer must be running for jobs to make progress.
func NewPipeline(
	documents storage.DocumentStore,
	cache storage.SemanticCacheStore,
	provider ai.Provider,
	jobStore *jobs.Store,
	taskQueue *queue.TaskQueue,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentStoreRequired
	}
	if cache == nil {
		return nil, ErrCacheStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if jobStore == nil {
		return nil, ErrJobStoreRequired
	}
	if taskQueue == nil {
		return nil, ErrQueueRequired
	}

	p := &Pipeline{
		documents: documents,
		cache:     cache,
		embedder:  provider.Embedder(),
		chunker:   chunking.NewSentenceAware(),
		jobs:      jobStore,
		queue:     taskQueue,
		fanOut:    DefaultFanOut,
		logger:    slog.Default().With("component", "ingest"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Ingest validates the request, registers a job, and enqueues the chunking
// and embedding work. It returns the job id once the task is accepted;
// Enqueue blocks when the queue is full, propagating back-pressure to the
// caller. The job is immediately observable as Processing.
func (p *Pipeline) Ingest(ctx context.Context, documentID, fileName, content string) (string, error) {
	return p.submit(ctx, documentID, fileName, content)
}

// Reingest replaces a document's chunks. The invalidation cascade runs
// synchronously before anything is queued: by the time Reingest returns, no
// cached answer grounded in the document's old chunks can be served, and the
// old chunks are gone. Cascade errors surface to the caller. Only the
// chunking and embedding of the new content happens in the background.
func (p *Pipeline) Reingest(ctx context.Context, documentID, fileName, content string) (string, error) {
	if err := core.ValidateIngestRequest(documentID, fileName, content); err != nil {
		return "", err
	}
	if err := p.cascade(ctx, documentID); err != nil {
		p.logger.Error("invalidation cascade failed", "documentID", documentID, "err", err)
		return "", err
	}
	return p.submit(ctx, documentID, fileName, content)
}

func (p *Pipeline) submit(ctx context.Context, documentID, fileName, content string) (string, error) {
	if err := core.ValidateIngestRequest(documentID, fileName, content); err != nil {
		return "", err
	}

	job := &core.IngestJob{
		ID:         core.NewID(),
		DocumentID: documentID,
		FileName:   fileName,
		Status:     core.JobStatusProcessing,
		CreatedAt:  time.Now().UTC(),
	}
	p.jobs.AddOrUpdate(job)

	task := func(taskCtx context.Context) error {
		return p.process(taskCtx, job.ID, documentID, content)
	}
	if err := p.queue.Enqueue(ctx, task); err != nil {
		job.Status = core.JobStatusFailed
		job.Error = err.Error()
		p.jobs.AddOrUpdate(job)
		return "", err
	}

	p.logger.Info("ingest job queued", "jobID", job.ID, "documentID", documentID, "fileName", fileName)
	return job.ID, nil
}

// GetJob returns a snapshot of a job's state.
func (p *Pipeline) GetJob(id string) (*core.IngestJob, bool) {
	return p.jobs.GetJob(id)
}

// process runs inside the queue consumer. Its error return is for the
// processor's logging; job state carries the outcome to status queries.
func (p *Pipeline) process(ctx context.Context, jobID, documentID, content string) error {
	job, ok := p.jobs.GetJob(jobID)
	if !ok {
		// Evicted under load before processing started; do the work anyway,
		// there is just nowhere to report progress.
		job = &core.IngestJob{ID: jobID, DocumentID: documentID, Status: core.JobStatusProcessing, CreatedAt: time.Now().UTC()}
		p.jobs.AddOrUpdate(job)
	}

	segments := p.chunker.Chunk(content)
	job.ChunkCount = len(segments)
	p.jobs.AddOrUpdate(job)

	chunks := buildChunks(documentID, content, segments)
	if err := p.embedAndStore(ctx, chunks); err != nil {
		return p.fail(job, err)
	}

	job.Status = core.JobStatusDone
	p.jobs.AddOrUpdate(job)
	p.logger.Info("ingest job done", "jobID", job.ID, "documentID", documentID, "chunks", len(chunks))
	return nil
}

// cascade invalidates cached answers grounded in the document's chunks, then
// deletes the chunks. Invalidation must come first: a crash between the two
// steps leaves orphaned chunks, which re-ingest replaces, rather than cached
// answers pointing at deleted chunks.
func (p *Pipeline) cascade(ctx context.Context, documentID string) error {
	chunkIDs, err := p.documents.ListChunkIDsByDocumentID(ctx, documentID)
	if err != nil {
		return err
	}
	if len(chunkIDs) > 0 {
		if err := p.cache.InvalidateByChunkIds(ctx, chunkIDs); err != nil {
			return err
		}
	}
	return p.documents.DeleteByDocumentID(ctx, documentID)
}

// buildChunks assigns ids, indexes, and character offsets. Offsets are
// located sequentially: each segment is searched for after the previous
// segment's start, so overlapping segments still get increasing offsets.
func buildChunks(documentID, content string, segments []string) []*core.DocumentChunk {
	now := time.Now().UTC()
	chunks := make([]*core.DocumentChunk, len(segments))
	searchFrom := 0
	for i, segment := range segments {
		offset := searchFrom
		if idx := strings.Index(content[searchFrom:], segment); idx >= 0 {
			offset = searchFrom + idx
		}
		searchFrom = offset + 1

		chunks[i] = &core.DocumentChunk{
			ID:              core.NewID(),
			DocumentID:      documentID,
			Text:            segment,
			ChunkIndex:      i,
			CharOffset:      offset,
			IngestTimestamp: now,
		}
	}
	return chunks
}

// embedAndStore runs the bounded fan-out. The first failure cancels the
// remaining work; workers already past the check finish their chunk, which is
// harmless since a failed job's chunks are replaced on retry.
func (p *Pipeline) embedAndStore(ctx context.Context, chunks []*core.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	poolSize := min(p.fanOut, len(chunks))
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	abort := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, chunk := range chunks {
		if fanCtx.Err() != nil {
			break
		}

		wg.Add(1)
		c := chunk
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if fanCtx.Err() != nil {
				return
			}

			vector, err := p.embedder.GetEmbedding(fanCtx, c.Text)
			if err != nil {
				abort(err)
				return
			}
			c.Vector = vector

			if err := p.documents.StoreChunk(fanCtx, c); err != nil {
				abort(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			abort(submitErr)
			break
		}
	}

	wg.Wait()
	return firstErr
}

func (p *Pipeline) fail(job *core.IngestJob, err error) error {
	job.Status = core.JobStatusFailed
	job.Error = err.Error()
	p.jobs.AddOrUpdate(job)
	p.logger.Error("ingest job failed", "jobID", job.ID, "documentID", job.DocumentID, "err", err)
	return err
}
