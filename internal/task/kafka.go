package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by KafkaBroker.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the subset of *kafka.Reader used by KafkaWorker.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroker publishes envelopes to the Kafka topic named by their queue.
type KafkaBroker struct {
	writer messageWriter
	logger *slog.Logger
}

var _ Publisher = (*KafkaBroker)(nil)

// NewKafkaBroker creates a broker writing to brokers. Topics are created on
// first use when the cluster allows it.
func NewKafkaBroker(brokers []string, logger *slog.Logger) *KafkaBroker {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return newKafkaBroker(w, logger)
}

func newKafkaBroker(w messageWriter, logger *slog.Logger) *KafkaBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaBroker{writer: w, logger: logger.With("component", "kafka_broker")}
}

// Publish implements Publisher.
func (b *KafkaBroker) Publish(ctx context.Context, env *Envelope) error {
	value, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode task %s: %w", env.Name, err)
	}

	msg := kafka.Message{
		Topic: env.Queue,
		Key:   []byte(env.ID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "task", Value: []byte(env.Name)},
		},
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to topic %s: %w", env.Queue, err)
	}
	return nil
}

// Close flushes pending writes.
func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}

// KafkaWorker consumes task topics as a consumer group. Messages are handled
// one at a time and committed only after their handler returns, so a crash
// mid-task redelivers the message.
type KafkaWorker struct {
	reader   messageReader
	registry *Registry
	logger   *slog.Logger
	observer Observer
}

// NewKafkaWorker creates a worker in groupID reading the given queues.
func NewKafkaWorker(brokers []string, groupID string, queues []string, registry *Registry, logger *slog.Logger) *KafkaWorker {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    queues,
		MinBytes:       1,
		MaxBytes:       10e6,
		QueueCapacity:  1,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	return newKafkaWorker(r, registry, logger)
}

func newKafkaWorker(r messageReader, registry *Registry, logger *slog.Logger) *KafkaWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaWorker{reader: r, registry: registry, logger: logger.With("component", "kafka_worker")}
}

// SetObserver installs a callback run after every task execution.
func (w *KafkaWorker) SetObserver(observer Observer) {
	w.observer = observer
}

// Run consumes until ctx is done. It returns nil on cancellation and the
// first fetch or commit error otherwise. Undecodable messages are committed
// and skipped.
func (w *KafkaWorker) Run(ctx context.Context) error {
	defer func() {
		if err := w.reader.Close(); err != nil {
			w.logger.Warn("failed to close kafka reader", "error", err)
		}
	}()

	w.logger.Info("kafka worker started")
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.logger.Info("kafka worker stopped")
				return nil
			}
			return fmt.Errorf("fetch task message: %w", err)
		}

		env, err := DecodeEnvelope(msg.Value)
		if err != nil {
			w.logger.Error("discarding undecodable task message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
		} else {
			process(ctx, w.registry, env, w.observer, w.logger.With("offset", msg.Offset))
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit task message: %w", err)
		}
	}
}
