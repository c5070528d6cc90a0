package ingest

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/semcache/ai/mock"
	"github.com/poiesic/semcache/chunking"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/jobs"
	"github.com/poiesic/semcache/queue"
	"github.com/poiesic/semcache/storage"
	badgerstore "github.com/poiesic/semcache/storage/badger"
)

type testPipeline struct {
	pipeline  *Pipeline
	documents storage.DocumentStore
	cache     storage.SemanticCacheStore
	embedder  *mock.MockEmbedder
	jobStore  *jobs.Store
	taskQueue *queue.TaskQueue
	backend   *badgerstore.Backend
}

func newTestPipeline(t *testing.T, opts ...Option) *testPipeline {
	t.Helper()

	documents, cache, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())
	jobStore := jobs.NewStore()
	taskQueue := queue.NewTaskQueue(queue.DefaultCapacity)

	// Fixed-size chunking keeps segment counts deterministic
	defaults := []Option{WithChunker(chunking.NewFixedSize(chunking.WithChunkSize(10), chunking.WithOverlap(0)))}
	pipeline, err := NewPipeline(documents, cache, provider, jobStore, taskQueue, append(defaults, opts...)...)
	require.NoError(t, err)

	return &testPipeline{
		pipeline:  pipeline,
		documents: documents,
		cache:     cache,
		embedder:  embedder,
		jobStore:  jobStore,
		taskQueue: taskQueue,
		backend:   backend,
	}
}

// runNext executes the next queued task synchronously.
func (tp *testPipeline) runNext(t *testing.T, ctx context.Context) error {
	t.Helper()
	task, err := tp.taskQueue.Dequeue(ctx)
	require.NoError(t, err)
	return task(ctx)
}

// storedChunks retrieves every chunk for a document, ordered by chunk index.
func (tp *testPipeline) storedChunks(t *testing.T, ctx context.Context, documentID string) []*core.DocumentChunk {
	t.Helper()

	query, err := tp.embedder.GetEmbedding(ctx, "query")
	require.NoError(t, err)

	matches, err := tp.documents.SearchByVector(ctx, query, 1000)
	require.NoError(t, err)

	chunks := make([]*core.DocumentChunk, 0, len(matches))
	for _, match := range matches {
		if match.Item.DocumentID == documentID {
			chunks = append(chunks, match.Item)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks
}

func TestNewPipeline_Validation(t *testing.T) {
	documents, cache, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()
	jobStore := jobs.NewStore()
	taskQueue := queue.NewTaskQueue(1)

	t.Run("nil document store", func(t *testing.T) {
		_, err := NewPipeline(nil, cache, provider, jobStore, taskQueue)
		assert.ErrorIs(t, err, ErrDocumentStoreRequired)
	})

	t.Run("nil cache store", func(t *testing.T) {
		_, err := NewPipeline(documents, nil, provider, jobStore, taskQueue)
		assert.ErrorIs(t, err, ErrCacheStoreRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(documents, cache, nil, jobStore, taskQueue)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("nil job store", func(t *testing.T) {
		_, err := NewPipeline(documents, cache, provider, nil, taskQueue)
		assert.ErrorIs(t, err, ErrJobStoreRequired)
	})

	t.Run("nil queue", func(t *testing.T) {
		_, err := NewPipeline(documents, cache, provider, jobStore, nil)
		assert.ErrorIs(t, err, ErrQueueRequired)
	})
}

func TestIngest_InvalidRequest(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	tests := []struct {
		name       string
		documentID string
		fileName   string
		content    string
		wantErr    error
	}{
		{"empty document id", "", "file.txt", "content", core.ErrEmptyDocumentID},
		{"empty file name", "doc-1", "", "content", core.ErrEmptyFileName},
		{"empty content", "doc-1", "file.txt", "  ", core.ErrEmptyContent},
		{"oversized content", "doc-1", "file.txt", strings.Repeat("x", core.MaxContentLength+1), core.ErrContentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tp.pipeline.Ingest(ctx, tt.documentID, tt.fileName, tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 0, tp.taskQueue.Len(), "rejected requests should not reach the queue")
	assert.Equal(t, 0, tp.jobStore.Len(), "rejected requests should not register jobs")
}

func TestIngest_HappyPath(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	// 70 chars at chunk size 10 without overlap yields 7 segments, two more
	// than the fan-out bound
	content := strings.Repeat("abcdefghij", 7)

	jobID, err := tp.pipeline.Ingest(ctx, "doc-1", "doc.txt", content)
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	// Observable as in-flight the moment the request is accepted
	job, ok := tp.pipeline.GetJob(jobID)
	require.True(t, ok)
	assert.Equal(t, core.JobStatusProcessing, job.Status)

	require.NoError(t, tp.runNext(t, ctx))

	job, ok = tp.pipeline.GetJob(jobID)
	require.True(t, ok)
	assert.Equal(t, core.JobStatusDone, job.Status)
	assert.Equal(t, 7, job.ChunkCount)
	assert.Empty(t, job.Error)

	chunks := tp.storedChunks(t, ctx, "doc-1")
	require.Len(t, chunks, 7)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, i*10, chunk.CharOffset)
		assert.NotEmpty(t, chunk.Vector)
		assert.Equal(t, "abcdefghij", chunk.Text)
	}
	assert.Equal(t, 7, tp.embedder.CallCount())
}

func TestIngest_OffsetsIncreaseWithOverlap(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t, WithChunker(chunking.NewFixedSize(chunking.WithChunkSize(10), chunking.WithOverlap(4))))

	content := "abcdefghijklmnopqrstuvwxyz"
	jobID, err := tp.pipeline.Ingest(ctx, "doc-1", "doc.txt", content)
	require.NoError(t, err)
	require.NoError(t, tp.runNext(t, ctx))

	job, _ := tp.pipeline.GetJob(jobID)
	require.Equal(t, core.JobStatusDone, job.Status)

	chunks := tp.storedChunks(t, ctx, "doc-1")
	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].CharOffset, chunks[i-1].CharOffset,
			"offsets must increase even when segments overlap")
	}
}

func TestIngest_FailFast(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	tp.embedder.GetEmbeddingFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, assert.AnError
	}

	jobID, err := tp.pipeline.Ingest(ctx, "doc-1", "doc.txt", strings.Repeat("abcdefghij", 7))
	require.NoError(t, err)

	err = tp.runNext(t, ctx)
	assert.ErrorIs(t, err, assert.AnError)

	job, ok := tp.pipeline.GetJob(jobID)
	require.True(t, ok)
	assert.Equal(t, core.JobStatusFailed, job.Status)
	assert.NotEmpty(t, job.Error)
}

func TestIngest_EnqueueBackPressure(t *testing.T) {
	tp := newTestPipeline(t)

	// Fill a capacity-1 queue so the next enqueue cannot proceed
	full := queue.NewTaskQueue(1)
	require.NoError(t, full.Enqueue(context.Background(), func(ctx context.Context) error { return nil }))
	tp.pipeline.queue = full

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tp.pipeline.Ingest(ctx, "doc-1", "doc.txt", "some content")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReingest_InvalidationCascade(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	// First ingest
	_, err := tp.pipeline.Ingest(ctx, "doc-1", "doc.txt", strings.Repeat("abcdefghij", 3))
	require.NoError(t, err)
	require.NoError(t, tp.runNext(t, ctx))

	oldChunks := tp.storedChunks(t, ctx, "doc-1")
	require.Len(t, oldChunks, 3)

	// A cached answer grounded in one of the document's chunks, and one
	// grounded elsewhere
	now := time.Now().UTC()
	require.NoError(t, tp.cache.Store(ctx, &core.CacheEntry{
		ID:             "grounded-here",
		Prompt:         "about doc-1",
		Answer:         "stale",
		Vector:         []float32{1, 0},
		SourceChunkIDs: []string{oldChunks[1].ID},
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
	}))
	require.NoError(t, tp.cache.Store(ctx, &core.CacheEntry{
		ID:             "grounded-elsewhere",
		Prompt:         "about another doc",
		Answer:         "still valid",
		Vector:         []float32{0, 1},
		SourceChunkIDs: []string{"unrelated-chunk"},
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
	}))

	// Re-ingest with different content
	jobID, err := tp.pipeline.Reingest(ctx, "doc-1", "doc.txt", strings.Repeat("0123456789", 2))
	require.NoError(t, err)

	// The cascade runs on the request path: by the time Reingest returns,
	// and before the queued task has run, the stale cached answer and the
	// old chunks are already gone
	stale, err := tp.cache.SearchNearest(ctx, []float32{1, 0})
	require.NoError(t, err)
	if stale != nil {
		assert.NotEqual(t, "grounded-here", stale.Item.ID)
	}
	assert.Empty(t, tp.storedChunks(t, ctx, "doc-1"),
		"old chunks must be removed before the background task runs")

	require.NoError(t, tp.runNext(t, ctx))

	job, _ := tp.pipeline.GetJob(jobID)
	require.Equal(t, core.JobStatusDone, job.Status)
	assert.Equal(t, 2, job.ChunkCount)

	// Old chunks replaced
	newChunks := tp.storedChunks(t, ctx, "doc-1")
	require.Len(t, newChunks, 2)
	oldIDs := map[string]bool{}
	for _, chunk := range oldChunks {
		oldIDs[chunk.ID] = true
	}
	for _, chunk := range newChunks {
		assert.False(t, oldIDs[chunk.ID], "re-ingest should mint fresh chunk ids")
		assert.Equal(t, "0123456789", chunk.Text)
	}

	// Cache entry grounded in the replaced chunks is gone, the other survives
	stale, err = tp.cache.SearchNearest(ctx, []float32{1, 0})
	require.NoError(t, err)
	if stale != nil {
		assert.NotEqual(t, "grounded-here", stale.Item.ID)
	}
	surviving, err := tp.cache.SearchNearest(ctx, []float32{0, 1})
	require.NoError(t, err)
	require.NotNil(t, surviving)
	assert.Equal(t, "grounded-elsewhere", surviving.Item.ID)
}

func TestReingest_CascadeErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	// A closed backend makes the cascade's chunk listing fail
	require.NoError(t, tp.backend.Close())

	_, err := tp.pipeline.Reingest(ctx, "doc-1", "doc.txt", "some content")
	require.Error(t, err)
	assert.Equal(t, 0, tp.taskQueue.Len(), "a failed cascade must not enqueue work")
	assert.Equal(t, 0, tp.jobStore.Len(), "a failed cascade must not register a job")
}

func TestReingest_FirstTimeBehavesLikeIngest(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	jobID, err := tp.pipeline.Reingest(ctx, "doc-new", "doc.txt", "never seen before")
	require.NoError(t, err)
	require.NoError(t, tp.runNext(t, ctx))

	job, ok := tp.pipeline.GetJob(jobID)
	require.True(t, ok)
	assert.Equal(t, core.JobStatusDone, job.Status)
	assert.Greater(t, job.ChunkCount, 0)
}
