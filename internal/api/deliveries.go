package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// DeliveryReader exposes the delivery audit trail to operators.
type DeliveryReader interface {
	ListDeliveryAttempts(ctx context.Context, subscriberID, status, direction string, limit int) ([]domain.DeliveryAttempt, error)
	GetDeliveryAttempt(ctx context.Context, id int64) (*domain.DeliveryAttempt, error)
}

type DeliveryHandler struct {
	store DeliveryReader
}

func NewDeliveryHandler(store DeliveryReader) *DeliveryHandler {
	return &DeliveryHandler{store: store}
}

// List handles GET /v1/deliveries.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	subscriberID := r.URL.Query().Get("subscriber_id")
	status := r.URL.Query().Get("status")
	direction := r.URL.Query().Get("direction")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	attempts, err := h.store.ListDeliveryAttempts(r.Context(), subscriberID, status, direction, limit)
	if err != nil {
		respondError(w, r, apperr.CodeOf(err))
		return
	}

	respondJSON(w, http.StatusOK, attempts)
}

// Get handles GET /v1/deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, apperr.ValidationError)
		return
	}

	attempt, err := h.store.GetDeliveryAttempt(r.Context(), id)
	if err != nil {
		respondError(w, r, apperr.CodeOf(err))
		return
	}
	if attempt == nil {
		respondError(w, r, apperr.DeliveryAttemptNotFound)
		return
	}

	respondJSON(w, http.StatusOK, attempt)
}
