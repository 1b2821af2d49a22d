package domain

import (
	"context"
	"time"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
)

// Record is the durable form of a delivery event. ID is store-assigned; EventID
// is the idempotency key — at most one Record exists per event id, no matter how
// many times the log delivers the event.
type Record struct {
	ID        int64
	EventID   string
	Recipient string
	Body      string
	Status    coredomain.DeliveryStatus
	CreatedAt time.Time
}

// RecordFromEvent maps a validated event onto its storable form.
func RecordFromEvent(e coredomain.DeliveryEvent) Record {
	return Record{
		EventID:   e.EventID,
		Recipient: e.Recipient,
		Body:      e.Body,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}

// RecordRepository is the store behind the consumer and the history read path.
type RecordRepository interface {
	// Upsert inserts the record unless one with the same event id already
	// exists, in which case it is a no-op. inserted reports which happened.
	Upsert(ctx context.Context, rec Record) (inserted bool, err error)

	// ListByRecipient returns up to limit records for the recipient,
	// newest first. An unknown recipient yields an empty slice, not an error.
	ListByRecipient(ctx context.Context, recipient string, limit int) ([]Record, error)
}
