package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// NewID generates a random unique identifier for domain entities.
func NewID() string {
	return uuid.New().String()
}

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID, which makes cache writes for
// repeated prompts idempotent.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentChunk is a contiguous segment of an ingested document together with
// its embedding. Chunks are created by the ingest pipeline, never mutated
// afterwards, and deleted when their document is re-ingested or removed.
type DocumentChunk struct {
	ID              string    `json:"id"`
	DocumentID      string    `json:"documentId"`
	Text            string    `json:"text"`
	Vector          []float32 `json:"vector"`
	ChunkIndex      int       `json:"chunkIndex"`
	CharOffset      int       `json:"charOffset"`
	IngestTimestamp time.Time `json:"ingestTimestamp"`
}

// CacheEntry is a cached answer keyed by the embedding of its original prompt.
// SourceChunkIDs are weak back-references to the chunks that grounded the
// answer: identifiers only, no ownership. Entries are never updated in place;
// they disappear through TTL expiry or the invalidation cascade.
type CacheEntry struct {
	ID             string    `json:"id"`
	Prompt         string    `json:"prompt"`
	Answer         string    `json:"answer"`
	Vector         []float32 `json:"vector"`
	SourceChunkIDs []string  `json:"sourceChunkIds"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// JobStatus is the lifecycle state of an ingest job.
/// The state machine is linear: Pending -> Processing -> Done | Failed.
type JobStatus int

const (
	// JobStatusPending means the job is registered but processing has not started.
	JobStatusPending JobStatus = iota + 1
	// JobStatusProcessing means the background task is working on the job.
	JobStatusProcessing
	// JobStatusDone means all chunks were embedded and stored.
	JobStatusDone
	// JobStatusFailed means at least one chunk failed and processing stopped.
	JobStatusFailed
)

// String returns the status name used in API responses and logs.
func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "Pending"
	case JobStatusProcessing:
		return "Processing"
	case JobStatusDone:
		return "Done"
	case JobStatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// MarshalJSON encodes the status as its name rather than the numeric value.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its name.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Pending":
		*s = JobStatusPending
	case "Processing":
		*s = JobStatusProcessing
	case "Done":
		*s = JobStatusDone
	case "Failed":
		*s = JobStatusFailed
	default:
		return fmt.Errorf("%w: %q", ErrInvalidJobStatus, name)
	}
	return nil
}

// IngestJob tracks the progress of one document ingestion.
// It is created on the ingest request, mutated only by the owning background
// task, and read by status queries.
type IngestJob struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	Status     JobStatus `json:"status"`
	ChunkCount int       `json:"chunkCount"`
	CreatedAt  time.Time `json:"createdAt"`

	// Error holds the failure message when Status is JobStatusFailed.
	Error string `json:"error,omitempty"`
}

// SimilarityResult pairs an item with its similarity score from a vector
// search. Scores are normalized cosine similarities, nominally in [0,1].
// Results are transient and never persisted.
type SimilarityResult[T any] struct {
	Item  T
	Score float64
}
