package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// maxInboundBodyBytes bounds the inbound webhook body read.
const maxInboundBodyBytes = 1 << 20

// Registrar registers webhook subscribers.
type Registrar interface {
	Register(ctx context.Context, url string) (*domain.Subscriber, error)
}

// SubscriberLister enumerates registered subscribers for the operator view.
type SubscriberLister interface {
	ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error)
}

// IncomingRecorder audits webhooks received on the inbound endpoint.
type IncomingRecorder interface {
	RecordIncoming(ctx context.Context, url string, payload []byte) (int64, error)
}

type WebhookHandler struct {
	registry Registrar
	store    SubscriberLister
	recorder IncomingRecorder
	validate *validator.Validate
	logger   *slog.Logger
}

func NewWebhookHandler(registry Registrar, store SubscriberLister, recorder IncomingRecorder, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		registry: registry,
		store:    store,
		recorder: recorder,
		validate: newValidator(),
		logger:   logger,
	}
}

// Register handles POST /v1/webhooks/register.
func (h *WebhookHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.RequestBodyMissing)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, r, fieldErrorsFrom(err))
		return
	}

	sub, err := h.registry.Register(r.Context(), req.URL)
	if err != nil {
		respondError(w, r, apperr.CodeOf(err))
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}

// List handles GET /v1/webhooks.
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.store.ListActiveSubscribers(r.Context())
	if err != nil {
		respondError(w, r, apperr.CodeOf(err))
		return
	}

	respondJSON(w, http.StatusOK, subscribers)
}

// Receive handles POST /v1/webhooks/receive: acknowledge immediately, audit
// asynchronously.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBodyBytes))
	if err != nil || len(body) == 0 || !json.Valid(body) {
		respondError(w, r, apperr.RequestBodyMissing)
		return
	}

	// The X-Signature slot is accepted but verification is not defined yet.
	if r.Header.Get("X-Signature") != "" {
		h.logger.Debug("inbound webhook carried a signature")
	}

	receivedAt := requestURL(r)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "Webhook sent successfully")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := h.recorder.RecordIncoming(ctx, receivedAt, body); err != nil {
			h.logger.Error("failed to audit incoming webhook", "error", err)
		}
	}()
}

// requestURL reconstructs the absolute URL the webhook was posted to.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
