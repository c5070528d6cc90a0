package queue

import (
	"context"
	"fmt"
	"log/slog"
)

// Processor is the single consumer of one TaskQueue. Work item failures are
// logged and swallowed; they never reach a caller and never stop the loop.
type Processor struct {
	queue  *TaskQueue
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a processor draining the given queue. The name tags
// every log line so the two queue consumers can be told apart.
func NewProcessor(q *TaskQueue, name string, opts ...ProcessorOption) (*Processor, error) {
	if q == nil {
		return nil, ErrQueueRequired
	}
	p := &Processor{
		queue:  q,
		logger: slog.Default().With("processor", name),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run drains the queue until ctx is cancelled. An item already dequeued when
// cancellation arrives runs to completion; items still queued are dropped.
// Run is intended to be launched in its own goroutine, one per queue.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("background processor started")
	for {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Info("background processor stopping", "reason", err)
			return
		}
		p.execute(ctx, task)
	}
}

// execute runs one work item, containing both returned errors and panics.
func (p *Processor) execute(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic executing background work item", "panic", fmt.Sprint(r))
		}
	}()

	if err := task(ctx); err != nil {
		p.logger.Error("error executing background work item", "err", err)
	}
}
