package messagebroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher wraps a kafka-go Writer configured for durable event publication:
// the write call returns only after all in-sync replicas acknowledge the batch.
// Retry policy is owned by the caller, so the writer itself makes a single attempt.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Publisher for the given topic. Events carry no partition
// key; the round-robin balancer spreads them uniformly across partitions.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.RoundRobin{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  1,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger.With("component", "kafka_publisher"),
	}, nil
}

// Publish writes a single message and blocks until the broker acknowledges it.
func (p *Publisher) Publish(ctx context.Context, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Value: value,
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Consumer wraps a kafka-go Reader joined to a named consumer group. Offsets are
// committed only through Commit; there is no time-based auto-commit, so a consumer
// that crashes between Fetch and Commit is re-delivered the same message.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Consumer for the given group and topic. The group id is a
// fixed logical name so restarts resume from the last committed offset instead of
// replaying the topic from the beginning.
func NewConsumer(brokers []string, groupID, topic string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one broker")
	}
	if groupID == "" {
		return nil, fmt.Errorf("kafka consumer requires a group id")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka consumer requires a topic")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{reader: reader}, nil
}

// Fetch returns the next uncommitted message, blocking until one is available or
// the context is cancelled.
func (c *Consumer) Fetch(ctx context.Context) (kafka.Message, error) {
	return c.reader.FetchMessage(ctx)
}

// Commit advances the group offset past the given messages.
func (c *Consumer) Commit(ctx context.Context, msgs ...kafka.Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
