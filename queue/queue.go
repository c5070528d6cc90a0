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


package queue

import "context"

// Task is a unit of deferred work. The context carries the consumer's
// cancellation signal; a returned error is logged by the processor and
// discarded.
type Task func(ctx context.Context) error

// DefaultCapacity is the default bound of a task queue.
const DefaultCapacity = 100

// TaskQueue is a bounded FIFO of deferred work. Enqueue blocks when the queue
// is full, propagating back-pressure to producers instead of dropping work or
// growing without bound.
type TaskQueue struct {
	tasks chan Task
}

// NewTaskQueue creates a bounded task queue. A capacity below 1 falls back to
// DefaultCapacity.
func NewTaskQueue(capacity int) *TaskQueue {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &TaskQueue{
		tasks: make(chan Task, capacity),
	}
}

// Enqueue adds a task to the queue, blocking while the queue is full.
// It returns the context's error if ctx is cancelled before space frees up.
func (q *TaskQueue) Enqueue(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue removes the oldest task, blocking until one is available or ctx is
// cancelled.
func (q *TaskQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of queued tasks. Informational only; the value may
// be stale by the time it is read.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}
