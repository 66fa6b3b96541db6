package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/config"
)

// Broker names accepted in configuration.
const (
	BrokerMemory = "memory"
	BrokerKafka  = "kafka"
)

// Consumer executes queued tasks until its context is done.
type Consumer interface {
	Run(ctx context.Context) error
	SetObserver(observer Observer)
}

// TaskRunner bundles the publishing half of the configured broker with a
// constructor for its consuming half. The consumer is built on demand so
// publish-only processes never join a consumer group.
type TaskRunner struct {
	Broker     string
	Dispatcher *Dispatcher
	Router     Router

	newConsumer func() Consumer
	closeFn     func() error
}

// NewTaskRunner wires the broker selected by cfg.Broker. Registry must hold
// every task the consumer is expected to run.
func NewTaskRunner(cfg config.TaskConfig, registry *Registry, logger *slog.Logger) (*TaskRunner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	router := NewRouter(DefaultRoutes(), cfg.DefaultQueue)

	switch cfg.Broker {
	case BrokerMemory, "":
		queue := NewTaskQueue(cfg.QueueSize, logger)
		pool := NewWorkerPool(queue, registry, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, logger)
		return &TaskRunner{
			Broker:     BrokerMemory,
			Dispatcher: NewDispatcher(queue, router, logger),
			Router:     router,
			newConsumer: func() Consumer {
				return pool
			},
			closeFn: func() error {
				queue.Close()
				return nil
			},
		}, nil

	case BrokerKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("kafka broker requires at least one broker address")
		}
		broker := NewKafkaBroker(cfg.KafkaBrokers, logger)
		return &TaskRunner{
			Broker:     BrokerKafka,
			Dispatcher: NewDispatcher(broker, router, logger),
			Router:     router,
			newConsumer: func() Consumer {
				return NewKafkaWorker(cfg.KafkaBrokers, cfg.GroupID, router.Queues(), registry, logger)
			},
			closeFn: broker.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported task broker %q", cfg.Broker)
	}
}

// Consumer returns the consuming half. For the memory broker every call
// returns the same pool; for Kafka each call creates a group member, which
// its Run closes on exit.
func (r *TaskRunner) Consumer() Consumer {
	return r.newConsumer()
}

// Close releases the publishing side.
func (r *TaskRunner) Close() error {
	if r.closeFn == nil {
		return nil
	}
	return r.closeFn()
}
