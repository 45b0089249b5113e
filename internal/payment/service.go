// Package payment processes card payments. It is the producer side of the
// webhook dispatch: a successful payment yields a DispatchEvent that is
// fanned out to subscribers, and webhook trouble never fails the payment.
package payment

import (
	"context"
	"log/slog"
	"strconv"

	"payment-service/internal/apperr"
	"payment-service/internal/cardcrypto"
	"payment-service/internal/domain"
)

// Store persists payment records.
type Store interface {
	CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error)
}

// Notifier fans the payment outcome out to webhook subscribers.
type Notifier interface {
	Trigger(ctx context.Context, event domain.DispatchEvent)
}

type Service struct {
	store    Store
	cipher   *cardcrypto.Cipher
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, cipher *cardcrypto.Cipher, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		cipher:   cipher,
		notifier: notifier,
		logger:   logger,
	}
}

// Process encrypts the card number, authorizes the payment, persists it and
// triggers the webhook fan-out. The returned event doubles as the API
// response body.
func (s *Service) Process(ctx context.Context, req domain.PaymentRequest) (*domain.DispatchEvent, error) {
	ciphertext, iv, err := s.cipher.Encrypt(req.CardNumber)
	if err != nil {
		s.logger.Error("card encryption failed", "error", err)
		return nil, apperr.Wrap(apperr.CardEncryptionError, "encrypting card number", err)
	}

	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	saved, err := s.store.CreatePayment(ctx, domain.Payment{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ZipCode:    req.ZipCode,
		CardNumber: ciphertext,
		IV:         iv,
	})
	if err != nil {
		s.logger.Error("failed to persist payment", "error", err)
		return nil, err
	}

	event := domain.DispatchEvent{
		Status:        "SUCCESS",
		TransactionID: strconv.FormatInt(saved.ID, 10),
	}

	// Trigger returns once the pending audit rows exist; transport I/O runs
	// on the worker pool. It never raises back into the payment path.
	s.notifier.Trigger(ctx, event)

	return &event, nil
}

// authorize is where a real gateway integration would go.
func (s *Service) authorize(_ context.Context) error {
	return nil
}
