package domain

import (
	"context"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
)

// Attempt is a validated send request. It lives only for the duration of the
// request: once a DeliveryEvent is emitted (or the gate short-circuits the
// request) the attempt is gone.
type Attempt struct {
	Recipient string
	Body      string
}

// VendorOutcome is the result of a simulated vendor call.
type VendorOutcome string

const (
	VendorSuccess VendorOutcome = "SUCCESS"
	VendorFailed  VendorOutcome = "FAILED"
)

// Status maps the vendor outcome onto the event status vocabulary.
func (o VendorOutcome) Status() coredomain.DeliveryStatus {
	if o == VendorSuccess {
		return coredomain.StatusSuccess
	}
	return coredomain.StatusFailed
}

// BlockListGate answers whether a recipient is denied. Implementations must fail
// closed: an unreachable backing set is an error, never "not blocked".
type BlockListGate interface {
	IsBlocked(ctx context.Context, recipient string) (bool, error)
}

// DeliveryVendor stands in for the outbound delivery provider.
type DeliveryVendor interface {
	AttemptDelivery(ctx context.Context, recipient, body string) (VendorOutcome, error)
}

// EventPublisher hands a completed attempt's event to the durable log. Publish
// returns only after the log acknowledges receipt, or with an error once the
// bounded retry budget is exhausted.
type EventPublisher interface {
	Publish(ctx context.Context, event coredomain.DeliveryEvent) error
}
