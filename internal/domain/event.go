package domain

// DispatchEvent is the payment outcome fanned out to subscribers. It is also
// the response body of POST /v1/payments — subscribers see exactly what the
// payer saw. Never persisted on its own; the delivery attempts carry its
// serialized form.
type DispatchEvent struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}
