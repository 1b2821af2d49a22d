package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/app"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/domain"
)

// SendService is implemented by *app.SendAppService.
type SendService interface {
	Send(ctx context.Context, attempt domain.Attempt) (app.SendResult, error)
}

type SMSHandler struct {
	sender   SendService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSMSHandler(sender SendService, validate *validator.Validate, logger *slog.Logger) *SMSHandler {
	return &SMSHandler{
		sender:   sender,
		validate: validate,
		logger:   logger.With("handler", "sms"),
	}
}

func (h *SMSHandler) RegisterRoutes(r chi.Router) {
	r.Post("/send", h.handleSend)
}

func (h *SMSHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode send request", "error", err)
		h.jsonError(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "Send request failed validation", "error", err)
		h.jsonError(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.sender.Send(ctx, domain.Attempt{Recipient: req.Recipient, Body: req.Body})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBlockListUnavailable):
			h.writeResult(w, req.Recipient, coredomain.StatusFailed, "block list unavailable")
		case errors.Is(err, domain.ErrPublishFailed):
			h.writeResult(w, req.Recipient, coredomain.StatusFailed, "failed to record delivery event")
		default:
			logger.ErrorContext(ctx, "Send attempt failed", "error", err, "recipient", req.Recipient)
			h.writeResult(w, req.Recipient, coredomain.StatusFailed, "internal server error")
		}
		return
	}

	h.writeResult(w, req.Recipient, result.Status, result.Reason)
}

// writeResult maps the terminal status onto the HTTP status code:
// SUCCESS 200, BLOCKED 403, FAILED 500.
func (h *SMSHandler) writeResult(w http.ResponseWriter, recipient string, status coredomain.DeliveryStatus, reason string) {
	code := http.StatusOK
	switch status {
	case coredomain.StatusBlocked:
		code = http.StatusForbidden
	case coredomain.StatusFailed:
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(SendResponse{
		Status:    string(status),
		Recipient: recipient,
		Reason:    reason,
	})
}

func (h *SMSHandler) jsonError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(GenericErrorResponse{Error: message})
}
