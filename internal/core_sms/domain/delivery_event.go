package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the terminal outcome of a send attempt.
type DeliveryStatus string

const (
	StatusSuccess DeliveryStatus = "SUCCESS"
	StatusFailed  DeliveryStatus = "FAILED"
	StatusBlocked DeliveryStatus = "BLOCKED"
)

// Valid reports whether s is one of the known outcome values.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusBlocked:
		return true
	}
	return false
}

// ErrMalformedEvent marks a payload that cannot be decoded into a structurally
// valid DeliveryEvent. The consumer logs and skips these; they are never retried.
var ErrMalformedEvent = errors.New("malformed delivery event")

// DeliveryEvent is the unit of the event log. It is immutable once produced: the
// producer assigns EventID locally before the first transmission, so retries of
// the same logical event reuse the same id, and the store's uniqueness constraint
// on it makes re-delivery a no-op.
type DeliveryEvent struct {
	EventID   string         `json:"eventId"`
	Recipient string         `json:"recipient"`
	Body      string         `json:"body"`
	Status    DeliveryStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewDeliveryEvent builds an event for a completed attempt with a fresh id.
func NewDeliveryEvent(recipient, body string, status DeliveryStatus) DeliveryEvent {
	return DeliveryEvent{
		EventID:   uuid.NewString(),
		Recipient: recipient,
		Body:      body,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks structural validity: all required fields present, the id a
// parseable UUID and the status a known outcome.
func (e DeliveryEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: missing eventId", ErrMalformedEvent)
	}
	if _, err := uuid.Parse(e.EventID); err != nil {
		return fmt.Errorf("%w: eventId %q is not a UUID", ErrMalformedEvent, e.EventID)
	}
	if e.Recipient == "" {
		return fmt.Errorf("%w: missing recipient", ErrMalformedEvent)
	}
	if e.Body == "" {
		return fmt.Errorf("%w: missing body", ErrMalformedEvent)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrMalformedEvent, e.Status)
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing createdAt", ErrMalformedEvent)
	}
	return nil
}

// Encode serializes the event to its wire form (plain JSON, RFC 3339 timestamps).
func (e DeliveryEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeDeliveryEvent parses and validates a wire payload.
func DecodeDeliveryEvent(data []byte) (DeliveryEvent, error) {
	var e DeliveryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return DeliveryEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return DeliveryEvent{}, err
	}
	return e, nil
}
