package domain

import (
	"time"
)

// Delivery attempt statuses. PENDING transitions to SUCCEEDED or FAILED and
// then never changes again. RECEIVED is the (terminal) status of inbound
// audit rows.
const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusReceived  = "RECEIVED"
)

// Delivery directions.
const (
	DirectionOutgoing = "OUTGOING"
	DirectionIncoming = "INCOMING"
)

// Subscriber is a registered webhook endpoint. At most one active subscriber
// exists per URL; the URL and id are immutable after creation.
type Subscriber struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeliveryAttempt is the audit record of one dispatch to one subscriber,
// mutated across retries until it reaches a terminal status. SubscriberID is
// nil for INCOMING rows.
type DeliveryAttempt struct {
	ID           int64      `json:"id"`
	SubscriberID *int64     `json:"subscriberId,omitempty"`
	Direction    string     `json:"direction"`
	URL          string     `json:"url"`
	Payload      string     `json:"payload"`
	Status       string     `json:"status"`
	HTTPStatus   *int       `json:"httpStatus,omitempty"`
	RetryCount   int        `json:"retryCount"`
	ResponseBody *string    `json:"responseBody,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	ReceivedAt   *time.Time `json:"receivedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// RegisterWebhookRequest is the body of POST /v1/webhooks/register.
type RegisterWebhookRequest struct {
	URL string `json:"url" validate:"required,max=255,http_url"`
}
