package task

import (
	"context"
	"fmt"
	"log/slog"
)

// Task names.
const (
	// TaskTestCelery echoes its word argument; used to check the worker path.
	TaskTestCelery = "test_celery"
)

// DefaultQueue receives tasks without an explicit route.
const DefaultQueue = "main-queue"

// DefaultRoutes maps known tasks to their queues.
func DefaultRoutes() map[string]string {
	return map[string]string{
		TaskTestCelery: DefaultQueue,
	}
}

// Publisher sends an envelope to its queue.
type Publisher interface {
	Publish(ctx context.Context, env *Envelope) error
}

// Router resolves the queue for a task name.
type Router struct {
	routes       map[string]string
	defaultQueue string
}

// NewRouter creates a Router. An empty defaultQueue means DefaultQueue.
func NewRouter(routes map[string]string, defaultQueue string) Router {
	if defaultQueue == "" {
		defaultQueue = DefaultQueue
	}
	copied := make(map[string]string, len(routes))
	for k, v := range routes {
		copied[k] = v
	}
	return Router{routes: copied, defaultQueue: defaultQueue}
}

// Queue returns the queue for name.
func (r Router) Queue(name string) string {
	if q, ok := r.routes[name]; ok && q != "" {
		return q
	}
	return r.defaultQueue
}

// Queues returns every queue the router can resolve to.
func (r Router) Queues() []string {
	seen := map[string]bool{r.defaultQueue: true}
	out := []string{r.defaultQueue}
	for _, q := range r.routes {
		if q != "" && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

// Dispatcher builds envelopes and hands them to a Publisher.
type Dispatcher struct {
	publisher Publisher
	router    Router
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(publisher Publisher, router Router, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		publisher: publisher,
		router:    router,
		logger:    logger.With("component", "task_dispatcher"),
	}
}

// Dispatch publishes task name with args to its routed queue.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args any) (*Envelope, error) {
	env, err := NewEnvelope(name, d.router.Queue(name), args)
	if err != nil {
		return nil, err
	}

	if err := d.publisher.Publish(ctx, env); err != nil {
		d.logger.ErrorContext(ctx, "failed to publish task",
			"task_id", env.ID,
			"task_name", name,
			"queue", env.Queue,
			"error", err)
		return nil, fmt.Errorf("dispatch %s: %w", name, err)
	}

	d.logger.DebugContext(ctx, "task dispatched",
		"task_id", env.ID,
		"task_name", name,
		"queue", env.Queue)
	return env, nil
}
