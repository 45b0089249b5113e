package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// PaymentProcessor runs the payment pipeline.
type PaymentProcessor interface {
	Process(ctx context.Context, req domain.PaymentRequest) (*domain.DispatchEvent, error)
}

type PaymentHandler struct {
	processor PaymentProcessor
	validate  *validator.Validate
}

func NewPaymentHandler(processor PaymentProcessor) *PaymentHandler {
	return &PaymentHandler{
		processor: processor,
		validate:  newValidator(),
	}
}

// Create handles POST /v1/payments.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.RequestBodyMissing)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, r, fieldErrorsFrom(err))
		return
	}

	resp, err := h.processor.Process(r.Context(), req)
	if err != nil {
		respondError(w, r, apperr.CodeOf(err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
