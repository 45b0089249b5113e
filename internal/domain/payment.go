package domain

import (
	"time"
)

// Payment is the persisted payment record. CardNumber holds the AES-GCM
// ciphertext (base64); IV is the base64 nonce used for that row.
type Payment struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	ZipCode    string    `json:"zipCode"`
	CardNumber string    `json:"-"`
	IV         string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PaymentRequest is the body of POST /v1/payments. The card number is
// validated as 13-19 digits before it ever reaches the cipher.
type PaymentRequest struct {
	FirstName  string `json:"firstName" validate:"required,max=50"`
	LastName   string `json:"lastName" validate:"required,max=50"`
	ZipCode    string `json:"zipCode" validate:"required,max=20"`
	CardNumber string `json:"cardNumber" validate:"required,number,min=13,max=19"`
}
