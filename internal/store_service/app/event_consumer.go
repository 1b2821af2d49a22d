package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/store_service/domain"
)

// EventSource is the slice of the broker consumer this worker needs. Satisfied
// by *messagebroker.Consumer.
type EventSource interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// EventConsumer is the single long-lived worker that drains the event log into
// the record store. Per event the order is fixed: fetch, decode, persist, and
// only then commit the offset. Persistence failures are retried in place without
// committing, so a crash or store outage re-processes events but never drops one.
type EventConsumer struct {
	source     EventSource
	records    domain.RecordRepository
	logger     *slog.Logger
	backoff    time.Duration
	backoffMax time.Duration
}

func NewEventConsumer(
	source EventSource,
	records domain.RecordRepository,
	logger *slog.Logger,
	backoff, backoffMax time.Duration,
) *EventConsumer {
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	if backoffMax < backoff {
		backoffMax = backoff
	}
	return &EventConsumer{
		source:     source,
		records:    records,
		logger:     logger.With("service", "event_consumer"),
		backoff:    backoff,
		backoffMax: backoffMax,
	}
}

// Run consumes until ctx is cancelled. The in-flight event is finished (persisted
// and committed) before Run returns; an event stuck retrying against an
// unavailable store is abandoned uncommitted and re-delivered on the next start.
func (c *EventConsumer) Run(ctx context.Context) error {
	c.logger.Info("Event consumer starting")

	for {
		msg, err := c.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Event consumer stopping")
				return nil
			}
			c.logger.ErrorContext(ctx, "Failed to fetch from event log", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		event, decodeErr := coredomain.DecodeDeliveryEvent(msg.Value)
		if decodeErr != nil {
			// Malformed data is logged and skipped; retrying it forever would
			// wedge the partition behind an event that can never persist.
			eventsConsumedCounter.WithLabelValues("malformed").Inc()
			c.logger.ErrorContext(ctx, "Skipping malformed delivery event",
				"error", decodeErr, "partition", msg.Partition, "offset", msg.Offset)
			c.commit(ctx, msg)
			continue
		}

		if err := c.persistWithRetry(ctx, event); err != nil {
			// Only context cancellation ends the retry loop. No commit: the
			// event is re-presented on the next poll or the next start.
			c.logger.Warn("Shutting down with event unpersisted; it will be re-delivered",
				"event_id", event.EventID)
			return nil
		}

		c.commit(ctx, msg)
	}
}

// persistWithRetry upserts the event's record, retrying indefinitely with capped
// exponential backoff while the store is unreachable. Skipping is not an option:
// it would silently drop a record.
func (c *EventConsumer) persistWithRetry(ctx context.Context, event coredomain.DeliveryEvent) error {
	start := time.Now()
	defer func() { persistDurationHist.Observe(time.Since(start).Seconds()) }()

	backoff := c.backoff
	for {
		inserted, err := c.records.Upsert(ctx, domain.RecordFromEvent(event))
		if err == nil {
			if inserted {
				eventsConsumedCounter.WithLabelValues("persisted").Inc()
				c.logger.InfoContext(ctx, "Delivery event persisted",
					"event_id", event.EventID, "recipient", event.Recipient, "status", event.Status)
			} else {
				eventsConsumedCounter.WithLabelValues("duplicate").Inc()
				c.logger.InfoContext(ctx, "Delivery event re-delivered, record already exists",
					"event_id", event.EventID)
			}
			return nil
		}

		persistRetriesCounter.Inc()
		c.logger.ErrorContext(ctx, "Failed to persist delivery event, will retry",
			"error", err, "event_id", event.EventID, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.backoffMax {
			backoff = c.backoffMax
		}
	}
}

// commit advances the read position. A commit failure after successful
// persistence is logged and tolerated: re-delivery hits the idempotent upsert.
func (c *EventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.source.Commit(ctx, msg); err != nil {
		offsetCommitErrorsCounter.Inc()
		c.logger.ErrorContext(ctx, "Failed to commit offset, event may be re-delivered",
			"error", err, "partition", msg.Partition, "offset", msg.Offset)
	}
}
