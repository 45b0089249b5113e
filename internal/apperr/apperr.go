// Package apperr defines the closed set of error codes used across the
// service. Every failure that crosses a component boundary carries one of
// these codes; the HTTP edge maps them to status codes and the sender's
// retry loop consults their retryability.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// Payment errors
	CardEncryptionError Code = "CARD_ENCRYPTION_ERROR"
	ValidationError     Code = "VALIDATION_ERROR"
	RequestBodyMissing  Code = "REQUEST_BODY_MISSING"
	GatewayTimeout      Code = "GATEWAY_TIMEOUT"

	// Webhook errors
	WebhookAlreadyExists    Code = "WEBHOOK_ALREADY_EXISTS"
	DeliveryAttemptNotFound Code = "DELIVERY_ATTEMPT_NOT_FOUND"
	WebhookAccessFailed     Code = "WEBHOOK_ACCESS_FAILED"
	WebhookClientError      Code = "WEBHOOK_CLIENT_ERROR"
	WebhookSendingFailed    Code = "WEBHOOK_SENDING_FAILED"
	WebhookSerializeFailed  Code = "WEBHOOK_PAYLOAD_SERIALIZATION_FAILED"
	WebhookRegisterFailed   Code = "WEBHOOK_REGISTER_FAILED"
	WebhookDeliveryOverflow Code = "WEBHOOK_DELIVERY_QUEUE_FULL"

	// System errors
	DatabaseError       Code = "DATABASE_ERROR"
	InternalServerError Code = "INTERNAL_SERVER_ERROR"
)

// messages are the user-facing descriptions returned in error envelopes.
var messages = map[Code]string{
	CardEncryptionError:     "The card encryption failed",
	ValidationError:         "Validation failed",
	RequestBodyMissing:      "Request body is missing or malformed",
	GatewayTimeout:          "Payment gateway error occurred",
	WebhookAlreadyExists:    "Webhook with this url already exists",
	DeliveryAttemptNotFound: "Delivery attempt not found",
	WebhookAccessFailed:     "Failed to access the webhook endpoint",
	WebhookClientError:      "Webhook client error",
	WebhookSendingFailed:    "Webhook endpoint returned a non-2xx response",
	WebhookSerializeFailed:  "Failed to convert the payload to json",
	WebhookRegisterFailed:   "Failed to register webhook",
	WebhookDeliveryOverflow: "Delivery queue is full",
	DatabaseError:           "A database error occurred",
	InternalServerError:     "An unexpected error occurred",
}

var httpStatuses = map[Code]int{
	CardEncryptionError:     http.StatusUnprocessableEntity,
	ValidationError:         http.StatusBadRequest,
	RequestBodyMissing:      http.StatusBadRequest,
	GatewayTimeout:          http.StatusInternalServerError,
	WebhookAlreadyExists:    http.StatusConflict,
	DeliveryAttemptNotFound: http.StatusNotFound,
	WebhookAccessFailed:     http.StatusInternalServerError,
	WebhookClientError:      http.StatusInternalServerError,
	WebhookSendingFailed:    http.StatusInternalServerError,
	WebhookSerializeFailed:  http.StatusInternalServerError,
	WebhookRegisterFailed:   http.StatusInternalServerError,
	WebhookDeliveryOverflow: http.StatusServiceUnavailable,
	DatabaseError:           http.StatusInternalServerError,
	InternalServerError:     http.StatusInternalServerError,
}

// retryable marks the codes the sender may retry. Non-2xx responses are
// retried regardless of 4xx vs 5xx; subscriber-side bugs are treated the
// same as transient gateway failures.
var retryable = map[Code]bool{
	WebhookAccessFailed:  true,
	WebhookClientError:   true,
	WebhookSendingFailed: true,
}

// Message returns the stable description for a code.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[InternalServerError]
}

// HTTPStatus returns the response status the HTTP edge uses for a code.
func (c Code) HTTPStatus() int {
	if s, ok := httpStatuses[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the sender should retry a failure with this code.
func (c Code) Retryable() bool {
	return retryable[c]
}

// Error is a code-tagged error. Detail supplements the code's message with
// attempt-specific context (wrapped cause text, HTTP status, etc.).
type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a code-tagged error with attempt-specific detail.
func New(code Code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

// Wrap tags an underlying error with a code.
func Wrap(code Code, detail string, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}

// CodeOf extracts the code from an error chain. Untagged errors map to
// INTERNAL_SERVER_ERROR.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalServerError
}
