package payment

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"payment-service/internal/apperr"
	"payment-service/internal/cardcrypto"
	"payment-service/internal/domain"
)

type fakePaymentStore struct {
	saved *domain.Payment
	err   error
}

func (f *fakePaymentStore) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = 42
	f.saved = &p
	return &p, nil
}

type fakeNotifier struct {
	events []domain.DispatchEvent
}

func (f *fakeNotifier) Trigger(ctx context.Context, event domain.DispatchEvent) {
	f.events = append(f.events, event)
}

func testCipher(t *testing.T) *cardcrypto.Cipher {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	cipher, err := cardcrypto.NewCipher(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatal(err)
	}
	return cipher
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paymentRequest() domain.PaymentRequest {
	return domain.PaymentRequest{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		ZipCode:    "10115",
		CardNumber: "4111111111111111",
	}
}

func TestProcess_Success(t *testing.T) {
	store := &fakePaymentStore{}
	notifier := &fakeNotifier{}
	cipher := testCipher(t)
	service := NewService(store, cipher, notifier, silentLogger())

	event, err := service.Process(context.Background(), paymentRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Status != "SUCCESS" {
		t.Errorf("expected SUCCESS, got %s", event.Status)
	}
	if event.TransactionID != "42" {
		t.Errorf("expected transaction id 42, got %s", event.TransactionID)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(notifier.events))
	}
	if notifier.events[0] != *event {
		t.Errorf("dispatched event %+v differs from response %+v", notifier.events[0], *event)
	}
}

func TestProcess_CardNumberNeverStoredInClear(t *testing.T) {
	store := &fakePaymentStore{}
	cipher := testCipher(t)
	service := NewService(store, cipher, &fakeNotifier{}, silentLogger())

	req := paymentRequest()
	if _, err := service.Process(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.saved.CardNumber == req.CardNumber {
		t.Fatal("card number persisted in cleartext")
	}
	if store.saved.IV == "" {
		t.Fatal("persisted payment carries no IV")
	}

	// The stored ciphertext round-trips with the row's IV.
	plain, err := cipher.Decrypt(store.saved.CardNumber, store.saved.IV)
	if err != nil {
		t.Fatalf("stored ciphertext does not decrypt: %v", err)
	}
	if plain != req.CardNumber {
		t.Errorf("decrypted %q, want %q", plain, req.CardNumber)
	}
}

func TestProcess_StoreFailureSkipsDispatch(t *testing.T) {
	store := &fakePaymentStore{err: apperr.New(apperr.DatabaseError, "insert failed")}
	notifier := &fakeNotifier{}
	service := NewService(store, testCipher(t), notifier, silentLogger())

	_, err := service.Process(context.Background(), paymentRequest())
	if err == nil {
		t.Fatal("expected error when the store fails")
	}
	if apperr.CodeOf(err) != apperr.DatabaseError {
		t.Errorf("expected DATABASE_ERROR, got %s", apperr.CodeOf(err))
	}
	if len(notifier.events) != 0 {
		t.Errorf("failed payments must not dispatch webhooks, got %d events", len(notifier.events))
	}
}

func TestProcess_StoreErrorIsNotSwallowed(t *testing.T) {
	cause := errors.New("pool exhausted")
	store := &fakePaymentStore{err: cause}
	service := NewService(store, testCipher(t), &fakeNotifier{}, silentLogger())

	_, err := service.Process(context.Background(), paymentRequest())
	if !errors.Is(err, cause) {
		t.Errorf("store error must propagate unwrapped, got %v", err)
	}
}
