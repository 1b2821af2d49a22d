package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/domain"
)

// --- Mocks ---

type MockBlockListGate struct {
	mock.Mock
}

func (m *MockBlockListGate) IsBlocked(ctx context.Context, recipient string) (bool, error) {
	args := m.Called(ctx, recipient)
	return args.Bool(0), args.Error(1)
}

type MockDeliveryVendor struct {
	mock.Mock
}

func (m *MockDeliveryVendor) AttemptDelivery(ctx context.Context, recipient, body string) (domain.VendorOutcome, error) {
	args := m.Called(ctx, recipient, body)
	return args.Get(0).(domain.VendorOutcome), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
	published []coredomain.DeliveryEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, event coredomain.DeliveryEvent) error {
	m.published = append(m.published, event)
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newService(gate *MockBlockListGate, vendor *MockDeliveryVendor, publisher *MockEventPublisher) *SendAppService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSendAppService(gate, vendor, publisher, logger)
}

var testAttempt = domain.Attempt{Recipient: "+1234567890", Body: "hi"}

// --- Tests ---

func TestSend_Success(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(false, nil)
	vendor.On("AttemptDelivery", mock.Anything, testAttempt.Recipient, testAttempt.Body).Return(domain.VendorSuccess, nil)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("domain.DeliveryEvent")).Return(nil)

	result, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)

	require.NoError(t, err)
	assert.Equal(t, coredomain.StatusSuccess, result.Status)

	require.Len(t, publisher.published, 1)
	event := publisher.published[0]
	assert.Equal(t, coredomain.StatusSuccess, event.Status)
	assert.Equal(t, testAttempt.Recipient, event.Recipient)
	assert.Equal(t, testAttempt.Body, event.Body)
	assert.NoError(t, event.Validate())

	gate.AssertExpectations(t)
	vendor.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSend_Blocked_SkipsVendorButStillEmitsEvent(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(true, nil)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("domain.DeliveryEvent")).Return(nil)

	result, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)

	require.NoError(t, err)
	assert.Equal(t, coredomain.StatusBlocked, result.Status)

	vendor.AssertNotCalled(t, "AttemptDelivery", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, coredomain.StatusBlocked, publisher.published[0].Status)
}

func TestSend_VendorFailure_IsTerminalFailedNotError(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(false, nil)
	vendor.On("AttemptDelivery", mock.Anything, testAttempt.Recipient, testAttempt.Body).Return(domain.VendorFailed, nil)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("domain.DeliveryEvent")).Return(nil)

	result, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)

	require.NoError(t, err)
	assert.Equal(t, coredomain.StatusFailed, result.Status)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, coredomain.StatusFailed, publisher.published[0].Status)
}

func TestSend_GateUnavailable_FailsClosedWithoutEvent(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gateErr := domain.ErrBlockListUnavailable
	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(false, gateErr)

	_, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBlockListUnavailable)
	vendor.AssertNotCalled(t, "AttemptDelivery", mock.Anything, mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSend_PublishFailure_FailsTheRequest(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(false, nil)
	vendor.On("AttemptDelivery", mock.Anything, testAttempt.Recipient, testAttempt.Body).Return(domain.VendorSuccess, nil)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("domain.DeliveryEvent")).Return(domain.ErrPublishFailed)

	_, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPublishFailed,
		"a request whose event never landed must not be reported as successful")
}

func TestSend_VendorCancelled_NoEvent(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(false, nil)
	vendor.On("AttemptDelivery", mock.Anything, testAttempt.Recipient, testAttempt.Body).
		Return(domain.VendorFailed, context.Canceled)

	_, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSend_EventIDsUniqueAcrossAttempts(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, mock.Anything).Return(false, nil)
	vendor.On("AttemptDelivery", mock.Anything, mock.Anything, mock.Anything).Return(domain.VendorSuccess, nil)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("domain.DeliveryEvent")).Return(nil)

	svc := newService(gate, vendor, publisher)
	for i := 0; i < 5; i++ {
		_, err := svc.Send(context.Background(), testAttempt)
		require.NoError(t, err)
	}

	require.Len(t, publisher.published, 5, "exactly one event per attempt")
	seen := make(map[string]bool)
	for _, event := range publisher.published {
		assert.False(t, seen[event.EventID], "event id %s reused across attempts", event.EventID)
		seen[event.EventID] = true
	}
}

func TestSend_UnexpectedGateError(t *testing.T) {
	gate := new(MockBlockListGate)
	vendor := new(MockDeliveryVendor)
	publisher := new(MockEventPublisher)

	gate.On("IsBlocked", mock.Anything, testAttempt.Recipient).Return(false, errors.New("boom"))

	_, err := newService(gate, vendor, publisher).Send(context.Background(), testAttempt)
	require.Error(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
