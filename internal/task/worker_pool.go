package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool manages a pool of worker goroutines that execute envelopes
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	registry *Registry

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	// observer is called after every execution; nil means log only
	observer Observer
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(
	taskQueue TaskQueueReader,
	registry *Registry,
	config WorkerPoolConfig,
	logger *slog.Logger,
) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		registry:    registry,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "worker_pool"),
	}
}

// SetObserver installs a callback run after every task execution.
func (p *WorkerPool) SetObserver(observer Observer) {
	p.observer = observer
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals the workers to exit and waits for in-flight tasks.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Run starts the pool and blocks until ctx is done.
func (p *WorkerPool) Run(ctx context.Context) error {
	p.Start()
	<-ctx.Done()
	p.Stop()
	return nil
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case env, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			process(p.ctx, p.registry, env, p.observer, p.logger.With("worker_id", id))
		}
	}
}

// process executes one envelope, logs the outcome and notifies observer.
// Panics in handlers are reported as failures.
func process(ctx context.Context, registry *Registry, env *Envelope, observer Observer, logger *slog.Logger) {
	logger = logger.With(
		"task_id", env.ID,
		"task_name", env.Name,
		"queue", env.Queue,
	)

	start := time.Now()
	result, err := safeExecute(ctx, registry, env)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("task execution failed",
			"status", TaskStatusFailed,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
	} else {
		logger.Info("task completed",
			"status", TaskStatusCompleted,
			"duration_ms", elapsed.Milliseconds(),
			"result", result)
	}

	if observer != nil {
		observer(env, elapsed, err)
	}
}

func safeExecute(ctx context.Context, registry *Registry, env *Envelope) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return registry.Execute(ctx, env)
}
