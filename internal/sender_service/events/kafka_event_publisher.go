package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/domain"
)

// MessageSink is the slice of the broker publisher this package needs. Satisfied
// by *messagebroker.Publisher.
type MessageSink interface {
	Publish(ctx context.Context, value []byte) error
}

// KafkaEventPublisher serializes delivery events and writes them to the log with
// a bounded retry budget. The event id is assigned by the caller before Publish,
// so every retry carries the same id and payload; duplicates the retries may
// introduce are resolved by the consumer's idempotent upsert, not here.
type KafkaEventPublisher struct {
	sink        MessageSink
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

func NewKafkaEventPublisher(sink MessageSink, maxAttempts int, backoff time.Duration, logger *slog.Logger) *KafkaEventPublisher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &KafkaEventPublisher{
		sink:        sink,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger.With("component", "event_publisher"),
	}
}

var _ domain.EventPublisher = (*KafkaEventPublisher)(nil)

// Publish blocks until the log acknowledges the event or the retry budget is
// exhausted, in which case the error wraps ErrPublishFailed.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event coredomain.DeliveryEvent) error {
	payload, err := event.Encode()
	if err != nil {
		return fmt.Errorf("%w: encoding event %s: %v", domain.ErrPublishFailed, event.EventID, err)
	}

	backoff := p.backoff
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.sink.Publish(ctx, payload)
		if lastErr == nil {
			p.logger.InfoContext(ctx, "Delivery event published",
				"event_id", event.EventID, "status", event.Status, "attempt", attempt)
			return nil
		}

		p.logger.WarnContext(ctx, "Delivery event publish attempt failed",
			"error", lastErr, "event_id", event.EventID, "attempt", attempt, "max_attempts", p.maxAttempts)

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: event %s: %v", domain.ErrPublishFailed, event.EventID, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("%w: event %s after %d attempts: %v", domain.ErrPublishFailed, event.EventID, p.maxAttempts, lastErr)
}
