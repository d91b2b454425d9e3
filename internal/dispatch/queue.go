// Package dispatch runs caret moves and announcements on a single consumer,
// strictly in the order they were queued.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// DefaultCapacity is the queue length used when New is given a non-positive size.
const DefaultCapacity = 64

// ErrStopped is returned when queuing after the consumer has exited.
var ErrStopped = errors.New("dispatch queue stopped")

// Command is one unit of deferred work.
type Command struct {
	// Name identifies the command in logs.
	Name string
	Run  func(ctx context.Context) error
}

// Queue is a FIFO of commands drained by one goroutine running Run.
type Queue struct {
	items  chan Command
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// New creates a queue holding up to capacity pending commands.
func New(capacity int, logger *slog.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		items:  make(chan Command, capacity),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue appends cmd. It blocks while the queue is full.
func (q *Queue) Enqueue(ctx context.Context, cmd Command) error {
	select {
	case <-q.done:
		return ErrStopped
	default:
	}
	select {
	case q.items <- cmd:
		return nil
	case <-q.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes commands until ctx is cancelled. Command errors are logged
// and do not stop the consumer. Run must be called by one goroutine only.
func (q *Queue) Run(ctx context.Context) error {
	defer q.once.Do(func() { close(q.done) })

	q.logger.Debug("dispatch queue started")
	for {
		select {
		case <-ctx.Done():
			q.logger.Debug("dispatch queue stopped")
			return nil
		case cmd := <-q.items:
			q.execute(ctx, cmd)
		}
	}
}

// Flush waits until every command queued before the call has run.
func (q *Queue) Flush(ctx context.Context) error {
	barrier := make(chan struct{})
	err := q.Enqueue(ctx, Command{
		Name: "flush",
		Run: func(context.Context) error {
			close(barrier)
			return nil
		},
	})
	if err != nil {
		return err
	}
	select {
	case <-barrier:
		return nil
	case <-q.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) execute(ctx context.Context, cmd Command) {
	if cmd.Run == nil {
		return
	}
	if err := cmd.Run(ctx); err != nil {
		q.logger.Error("dispatch command failed",
			slog.String("command", cmd.Name),
			slog.String("error", err.Error()),
		)
	}
}
