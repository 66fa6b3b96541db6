package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the TaskQueue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueueReader provides read-only access to queued envelopes.
type TaskQueueReader interface {
	GetChannel() <-chan *Envelope
}

// TaskQueue is a buffered in-process queue. It publishes every queue name
// onto the same channel.
type TaskQueue struct {
	mu     sync.RWMutex
	tasks  chan *Envelope
	logger *slog.Logger
	closed bool
}

var (
	_ Publisher       = (*TaskQueue)(nil)
	_ TaskQueueReader = (*TaskQueue)(nil)
)

// NewTaskQueue creates a new task queue with the specified buffer size
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan *Envelope, size),
		logger: logger,
	}
}

// Publish adds env to the queue without blocking. It fails when the queue
// is full or closed.
func (q *TaskQueue) Publish(ctx context.Context, env *Envelope) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- env:
		q.logger.DebugContext(ctx, "task enqueued",
			"task_id", env.ID,
			"task_name", env.Name,
			"queue", env.Queue,
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close closes the task queue, preventing further task submission
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel returns a read-only channel for consuming tasks
func (q *TaskQueue) GetChannel() <-chan *Envelope {
	return q.tasks
}
