package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// pgUniqueViolation is the SQLSTATE raised when the partial unique index on
// (url) WHERE active rejects a duplicate registration.
const pgUniqueViolation = "23505"

// CreateSubscriber inserts an active subscriber. Two concurrent inserts of
// the same URL race on the unique index: exactly one wins, the other gets
// WEBHOOK_ALREADY_EXISTS.
func (s *PostgresStore) CreateSubscriber(ctx context.Context, url string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscribers (url, active)
		VALUES ($1, TRUE)
		RETURNING id, url, active, created_at
	`, url).Scan(&sub.ID, &sub.URL, &sub.Active, &sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Wrap(apperr.WebhookAlreadyExists, url, err)
		}
		return nil, apperr.Wrap(apperr.DatabaseError, "inserting subscriber", err)
	}

	return &sub, nil
}

// ListActiveSubscribers returns all subscribers with active = true.
func (s *PostgresStore) ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, url, active, created_at
		FROM subscribers
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "querying subscribers", err)
	}
	defer rows.Close()

	var subscribers []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.ID, &sub.URL, &sub.Active, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "reading subscribers", err)
	}

	if subscribers == nil {
		subscribers = []domain.Subscriber{}
	}

	return subscribers, nil
}
