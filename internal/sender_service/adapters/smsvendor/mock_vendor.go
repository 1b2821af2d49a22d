package smsvendor

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/domain"
)

// MockVendor simulates an outbound delivery provider: a bounded uniform random
// delay followed by FAILED with the configured probability. It keeps no state
// between calls; there is no backoff or circuit breaking because the component
// it stands in for is external.
type MockVendor struct {
	logger       *slog.Logger
	minLatencyMs int
	maxLatencyMs int
	failureRate  float64
}

func NewMockVendor(logger *slog.Logger, minLatencyMs, maxLatencyMs int, failureRate float64) *MockVendor {
	if maxLatencyMs < minLatencyMs {
		maxLatencyMs = minLatencyMs
	}
	return &MockVendor{
		logger:       logger.With("component", "mock_vendor"),
		minLatencyMs: minLatencyMs,
		maxLatencyMs: maxLatencyMs,
		failureRate:  failureRate,
	}
}

var _ domain.DeliveryVendor = (*MockVendor)(nil)

// AttemptDelivery sleeps a uniform random duration in [min, max] milliseconds and
// then returns the simulated outcome. Cancelling the context interrupts the sleep.
func (v *MockVendor) AttemptDelivery(ctx context.Context, recipient, body string) (domain.VendorOutcome, error) {
	latency := v.minLatencyMs
	if v.maxLatencyMs > v.minLatencyMs {
		latency += rand.Intn(v.maxLatencyMs - v.minLatencyMs + 1)
	}

	timer := time.NewTimer(time.Duration(latency) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.VendorFailed, ctx.Err()
	case <-timer.C:
	}

	if rand.Float64() < v.failureRate {
		v.logger.WarnContext(ctx, "Vendor simulated failure", "recipient", recipient, "latency_ms", latency)
		return domain.VendorFailed, nil
	}

	v.logger.DebugContext(ctx, "Vendor simulated success", "recipient", recipient, "latency_ms", latency, "content_len", len(body))
	return domain.VendorSuccess, nil
}
