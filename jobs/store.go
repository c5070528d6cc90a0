// Package jobs provides a bounded, in-memory registry of recent ingest job
// snapshots. It is a volatile status cache, not a durable ledger: history is
// lost on restart, and the oldest entries are evicted once the store exceeds
// its capacity.
package jobs

import (
	"sync"

	"github.com/poiesic/semcache/core"
)

// DefaultCapacity is the default maximum number of resident jobs.
const DefaultCapacity = 1000

// Store is a concurrent map from job id to the latest job snapshot, bounded
// by first-seen insertion order. It must be constructed explicitly and passed
// to every component that needs it.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]core.IngestJob
	order    []string // first-seen insertion order of ids
	capacity int
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum resident job count.
func WithCapacity(capacity int) Option {
	return func(s *Store) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// NewStore creates a job store with DefaultCapacity unless overridden.
func NewStore(opts ...Option) *Store {
	s := &Store{
		jobs:     make(map[string]core.IngestJob),
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddOrUpdate upserts a job snapshot. When a new id pushes the resident count
// past capacity, the oldest ids are evicted until residency is back at the
// limit. The snapshot is copied in, so later mutation of job by the caller
// does not affect the stored state.
func (s *Store) AddOrUpdate(job *core.IngestJob) {
	if job == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; !exists {
		s.order = append(s.order, job.ID)
		for len(s.order) > s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.jobs, oldest)
		}
	}
	s.jobs[job.ID] = *job
}

// GetJob returns the current snapshot for id, or found=false when the job is
// unknown or already evicted.
func (s *Store) GetJob(id string) (*core.IngestJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := job
	return &snapshot, true
}

// Len returns the resident job count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
