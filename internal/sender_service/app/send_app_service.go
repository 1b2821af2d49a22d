package app

import (
	"context"
	"log/slog"
	"time"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/domain"
)

// SendResult is the terminal outcome reported back to the caller. Every request
// that receives a gate decision gets exactly one of SUCCESS, FAILED or BLOCKED.
type SendResult struct {
	Status coredomain.DeliveryStatus
	Reason string
}

// SendAppService orchestrates the send path: gate, then vendor, then exactly one
// delivery event. BLOCKED attempts skip the vendor but still produce an event so
// the audit trail is complete.
type SendAppService struct {
	gate      domain.BlockListGate
	vendor    domain.DeliveryVendor
	publisher domain.EventPublisher
	logger    *slog.Logger
}

func NewSendAppService(
	gate domain.BlockListGate,
	vendor domain.DeliveryVendor,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *SendAppService {
	return &SendAppService{
		gate:      gate,
		vendor:    vendor,
		publisher: publisher,
		logger:    logger.With("service", "send_app"),
	}
}

// Send processes one attempt. It returns an error only when no terminal status
// could be established: the gate was unreachable (ErrBlockListUnavailable), the
// request was cancelled mid-vendor-call, or the event log never acknowledged the
// event (ErrPublishFailed). A vendor failure is a FAILED result, not an error.
func (s *SendAppService) Send(ctx context.Context, attempt domain.Attempt) (SendResult, error) {
	s.logger.InfoContext(ctx, "Processing send attempt", "recipient", attempt.Recipient)

	blocked, err := s.gate.IsBlocked(ctx, attempt.Recipient)
	if err != nil {
		sendErrorsCounter.WithLabelValues("gate").Inc()
		s.logger.ErrorContext(ctx, "Block list check failed", "error", err, "recipient", attempt.Recipient)
		return SendResult{}, err
	}

	var result SendResult
	if blocked {
		s.logger.InfoContext(ctx, "Attempt rejected by block list", "recipient", attempt.Recipient)
		result = SendResult{Status: coredomain.StatusBlocked, Reason: "recipient is on the block list"}
	} else {
		vendorStart := time.Now()
		outcome, err := s.vendor.AttemptDelivery(ctx, attempt.Recipient, attempt.Body)
		vendorCallDurationHist.Observe(time.Since(vendorStart).Seconds())
		if err != nil {
			sendErrorsCounter.WithLabelValues("vendor").Inc()
			s.logger.ErrorContext(ctx, "Vendor call aborted", "error", err, "recipient", attempt.Recipient)
			return SendResult{}, err
		}

		switch outcome.Status() {
		case coredomain.StatusSuccess:
			result = SendResult{Status: coredomain.StatusSuccess, Reason: "sms sent successfully"}
		default:
			s.logger.WarnContext(ctx, "Vendor rejected the message", "recipient", attempt.Recipient)
			result = SendResult{Status: coredomain.StatusFailed, Reason: "vendor rejected the message"}
		}
	}

	// The outcome is known; it always becomes exactly one event before the
	// request is answered. A request whose event never lands is a failed request.
	event := coredomain.NewDeliveryEvent(attempt.Recipient, attempt.Body, result.Status)
	publishStart := time.Now()
	err = s.publisher.Publish(ctx, event)
	eventPublishDurationHist.Observe(time.Since(publishStart).Seconds())
	if err != nil {
		sendErrorsCounter.WithLabelValues("publish").Inc()
		s.logger.ErrorContext(ctx, "Failed to publish delivery event",
			"error", err, "event_id", event.EventID, "recipient", attempt.Recipient)
		return SendResult{}, err
	}

	sendAttemptsCounter.WithLabelValues(string(result.Status)).Inc()
	s.logger.InfoContext(ctx, "Send attempt completed",
		"recipient", attempt.Recipient, "status", result.Status, "event_id", event.EventID)
	return result, nil
}
