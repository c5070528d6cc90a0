package queue

import "errors"

var (
	// ErrNilTask is returned when a nil task is enqueued.
	ErrNilTask = errors.New("task cannot be nil")

	// ErrQueueRequired is returned when a processor is created without a queue.
	ErrQueueRequired = errors.New("task queue required")
)
