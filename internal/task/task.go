package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// TaskStatus is the outcome recorded for a processed task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

var (
	// ErrUnknownTask is returned when no handler is registered for a task name.
	ErrUnknownTask = errors.New("unknown task")

	// ErrInvalidEnvelope is returned when a message cannot be decoded.
	ErrInvalidEnvelope = errors.New("invalid task envelope")
)

// Envelope is the unit published to a queue.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Queue      string          `json:"queue"`
	Args       json.RawMessage `json:"args,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewEnvelope encodes args and stamps a fresh id.
func NewEnvelope(name, queue string, args any) (*Envelope, error) {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode args for task %s: %w", name, err)
		}
		raw = b
	}

	return &Envelope{
		ID:         uuid.New(),
		Name:       name,
		Queue:      queue,
		Args:       raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Encode serialises the envelope for a message broker.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses an encoded envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if env.Name == "" {
		return nil, fmt.Errorf("%w: missing task name", ErrInvalidEnvelope)
	}
	return &env, nil
}

// Handler executes a task. The returned value is logged as the task result.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry maps task names to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler for name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Execute runs the handler registered for env.Name.
func (r *Registry) Execute(ctx context.Context, env *Envelope) (any, error) {
	h, ok := r.Lookup(env.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, env.Name)
	}
	return h(ctx, env.Args)
}

// Observer is notified after every task execution.
type Observer func(env *Envelope, elapsed time.Duration, err error)
