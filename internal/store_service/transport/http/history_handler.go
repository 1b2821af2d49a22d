package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ramG-reddy/sms-pipeline/internal/store_service/domain"
)

const maxHistoryLimit = 1000

// RecordResponse is one element of the GET /history/{recipient} array. The id is
// the event id: stable across re-deliveries and meaningful outside the store.
type RecordResponse struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryHandler struct {
	records      domain.RecordRepository
	logger       *slog.Logger
	defaultLimit int
}

func NewHistoryHandler(records domain.RecordRepository, defaultLimit int, logger *slog.Logger) *HistoryHandler {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &HistoryHandler{
		records:      records,
		logger:       logger.With("handler", "history"),
		defaultLimit: defaultLimit,
	}
}

func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/history/{recipient}", h.handleGetHistory)
}

// handleGetHistory returns the recipient's records newest first. An unknown
// recipient is an empty array, never an error.
func (h *HistoryHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	recipient := chi.URLParam(r, "recipient")

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.jsonError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.records.ListByRecipient(ctx, recipient, limit)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list records", "error", err, "recipient", recipient)
		h.jsonError(w, "Failed to retrieve message history", http.StatusInternalServerError)
		return
	}

	response := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, RecordResponse{
			ID:        rec.EventID,
			Recipient: rec.Recipient,
			Body:      rec.Body,
			Status:    string(rec.Status),
			CreatedAt: rec.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *HistoryHandler) jsonError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
