package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// maxResponseBodyBytes bounds the stored response body so a misbehaving
// subscriber cannot bloat the audit table.
const maxResponseBodyBytes = 64 * 1024

// CreatePending inserts the audit row for one outgoing delivery before its
// first transmit attempt.
func (s *PostgresStore) CreatePending(ctx context.Context, subscriberID int64, url string, payload []byte) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO delivery_attempts (subscriber_id, direction, url, payload, status, retry_count, sent_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW())
		RETURNING id
	`, subscriberID, domain.DirectionOutgoing, url, string(payload), domain.StatusPending).Scan(&id)
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "inserting delivery attempt", err)
	}
	return id, nil
}

// MarkSucceeded performs the terminal PENDING -> SUCCEEDED transition.
func (s *PostgresStore) MarkSucceeded(ctx context.Context, attemptID int64, httpStatus int, responseBody string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE delivery_attempts
		SET status = $2, http_status = $3, response_body = $4
		WHERE id = $1 AND status = $5
	`, attemptID, domain.StatusSucceeded, httpStatus,
		truncateBody(responseBody), domain.StatusPending)
	if err != nil {
		return apperr.Wrap(apperr.DatabaseError, "marking attempt succeeded", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery attempt %d is not pending", attemptID)
	}
	return nil
}

// MarkFailed performs the terminal PENDING -> FAILED transition. httpStatus
// is nil for pure transport failures; retry_count is left as-is.
func (s *PostgresStore) MarkFailed(ctx context.Context, attemptID int64, httpStatus *int, errorSummary string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE delivery_attempts
		SET status = $2, http_status = $3, response_body = $4
		WHERE id = $1 AND status = $5
	`, attemptID, domain.StatusFailed, httpStatus,
		truncateBody(errorSummary), domain.StatusPending)
	if err != nil {
		return apperr.Wrap(apperr.DatabaseError, "marking attempt failed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery attempt %d is not pending", attemptID)
	}
	return nil
}

// IncrementAttempt records one exhausted non-terminal attempt: bumps
// retry_count and keeps the row PENDING for the next try.
func (s *PostgresStore) IncrementAttempt(ctx context.Context, attemptID int64, httpStatus *int, lastResponseOrError string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE delivery_attempts
		SET retry_count = retry_count + 1, http_status = $2, response_body = $3
		WHERE id = $1 AND status = $4
	`, attemptID, httpStatus, truncateBody(lastResponseOrError), domain.StatusPending)
	if err != nil {
		return apperr.Wrap(apperr.DatabaseError, "incrementing attempt", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery attempt %d is not pending", attemptID)
	}
	return nil
}

// RecordIncoming audits a webhook received on the inbound test endpoint.
func (s *PostgresStore) RecordIncoming(ctx context.Context, url string, payload []byte) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO delivery_attempts (direction, url, payload, status, http_status, retry_count, response_body, received_at)
		VALUES ($1, $2, $3, $4, 200, 0, $5, NOW())
		RETURNING id
	`, domain.DirectionIncoming, url, string(payload), domain.StatusReceived,
		"Webhook received successfully").Scan(&id)
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "inserting incoming webhook", err)
	}
	return id, nil
}

// ListDeliveryAttempts returns audit rows, newest first, with optional
// filters.
func (s *PostgresStore) ListDeliveryAttempts(ctx context.Context, subscriberID, status, direction string, limit int) ([]domain.DeliveryAttempt, error) {
	query := `SELECT id, subscriber_id, direction, url, payload, status, http_status, retry_count, response_body, sent_at, received_at, created_at FROM delivery_attempts`
	args := []any{}
	conditions := []string{}

	if subscriberID != "" {
		args = append(args, subscriberID)
		conditions = append(conditions, fmt.Sprintf("subscriber_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if direction != "" {
		args = append(args, direction)
		conditions = append(conditions, fmt.Sprintf("direction = $%d", len(args)))
	}

	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "querying delivery attempts", err)
	}
	defer rows.Close()

	var attempts []domain.DeliveryAttempt
	for rows.Next() {
		var a domain.DeliveryAttempt
		err := rows.Scan(
			&a.ID, &a.SubscriberID, &a.Direction, &a.URL, &a.Payload,
			&a.Status, &a.HTTPStatus, &a.RetryCount, &a.ResponseBody,
			&a.SentAt, &a.ReceivedAt, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning delivery attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "reading delivery attempts", err)
	}

	if attempts == nil {
		attempts = []domain.DeliveryAttempt{}
	}

	return attempts, nil
}

// GetDeliveryAttempt returns a single audit row, or nil when absent.
func (s *PostgresStore) GetDeliveryAttempt(ctx context.Context, id int64) (*domain.DeliveryAttempt, error) {
	var a domain.DeliveryAttempt
	err := s.pool.QueryRow(ctx, `
		SELECT id, subscriber_id, direction, url, payload, status, http_status, retry_count, response_body, sent_at, received_at, created_at
		FROM delivery_attempts WHERE id = $1
	`, id).Scan(
		&a.ID, &a.SubscriberID, &a.Direction, &a.URL, &a.Payload,
		&a.Status, &a.HTTPStatus, &a.RetryCount, &a.ResponseBody,
		&a.SentAt, &a.ReceivedAt, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.DatabaseError, "querying delivery attempt", err)
	}
	return &a, nil
}

func truncateBody(body string) string {
	if len(body) > maxResponseBodyBytes {
		return body[:maxResponseBodyBytes]
	}
	return body
}
