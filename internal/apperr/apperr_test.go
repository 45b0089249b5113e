package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{WebhookAccessFailed, true},
		{WebhookClientError, true},
		{WebhookSendingFailed, true},
		{WebhookAlreadyExists, false},
		{WebhookSerializeFailed, false},
		{WebhookDeliveryOverflow, false},
		{ValidationError, false},
		{CardEncryptionError, false},
		{DatabaseError, false},
		{InternalServerError, false},
	}
	for _, tc := range cases {
		if got := tc.code.Retryable(); got != tc.want {
			t.Errorf("%s: Retryable() = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{WebhookAlreadyExists, http.StatusConflict},
		{ValidationError, http.StatusBadRequest},
		{RequestBodyMissing, http.StatusBadRequest},
		{DeliveryAttemptNotFound, http.StatusNotFound},
		{CardEncryptionError, http.StatusUnprocessableEntity},
		{WebhookDeliveryOverflow, http.StatusServiceUnavailable},
		{DatabaseError, http.StatusInternalServerError},
		{Code("NO_SUCH_CODE"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(WebhookAlreadyExists, "url")); got != WebhookAlreadyExists {
		t.Errorf("expected WEBHOOK_ALREADY_EXISTS, got %s", got)
	}

	wrapped := fmt.Errorf("outer: %w", Wrap(WebhookAccessFailed, "dial", errors.New("refused")))
	if got := CodeOf(wrapped); got != WebhookAccessFailed {
		t.Errorf("expected WEBHOOK_ACCESS_FAILED through the chain, got %s", got)
	}

	if got := CodeOf(errors.New("untagged")); got != InternalServerError {
		t.Errorf("untagged errors must map to INTERNAL_SERVER_ERROR, got %s", got)
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")

	cases := []struct {
		err  *Error
		want string
	}{
		{New(WebhookSendingFailed, "non-2xx response: 500"), "WEBHOOK_SENDING_FAILED: non-2xx response: 500"},
		{Wrap(WebhookAccessFailed, "dial", cause), "WEBHOOK_ACCESS_FAILED: dial: connection refused"},
		{&Error{Code: DatabaseError}, "DATABASE_ERROR"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(DatabaseError, "insert", cause)
	if !errors.Is(err, cause) {
		t.Error("Wrap must keep the cause reachable via errors.Is")
	}
}

func TestUnknownCodeMessage(t *testing.T) {
	if got := Code("NO_SUCH_CODE").Message(); got != InternalServerError.Message() {
		t.Errorf("unknown code must fall back to the internal message, got %q", got)
	}
}
