package store

import (
	"context"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// CreatePayment persists an encrypted payment record and returns it with
// its generated id.
func (s *PostgresStore) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO payments (first_name, last_name, zip_code, card_number, iv)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.FirstName, p.LastName, p.ZipCode, p.CardNumber, p.IV).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "inserting payment", err)
	}
	return &p, nil
}
