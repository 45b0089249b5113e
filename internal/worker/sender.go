package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"payment-service/internal/apperr"
	"payment-service/internal/engine"
)

// DeliveryLog is the mutation surface the sender needs on the audit store.
type DeliveryLog interface {
	IncrementAttempt(ctx context.Context, attemptID int64, httpStatus *int, lastResponseOrError string) error
	MarkSucceeded(ctx context.Context, attemptID int64, httpStatus int, responseBody string) error
	MarkFailed(ctx context.Context, attemptID int64, httpStatus *int, errorSummary string) error
}

// Sender runs one delivery to its terminal state: call the transport,
// classify the outcome, retry transient failures with exponential backoff,
// and record exactly one audit mutation per attempt. Nothing escapes to the
// caller; the terminal classification lives in the delivery log.
type Sender struct {
	transport engine.Transport
	log       DeliveryLog
	logger    *slog.Logger

	maxAttempts       int
	initialBackoff    time.Duration
	backoffMultiplier float64
}

func NewSender(transport engine.Transport, log DeliveryLog, logger *slog.Logger,
	maxAttempts int, initialBackoff time.Duration, backoffMultiplier float64) *Sender {
	return &Sender{
		transport:         transport,
		log:               log,
		logger:            logger,
		maxAttempts:       maxAttempts,
		initialBackoff:    initialBackoff,
		backoffMultiplier: backoffMultiplier,
	}
}

// Send drives the retry state machine for one PENDING attempt. Context
// cancellation interrupts backoff sleeps and leaves the attempt PENDING.
func (s *Sender) Send(ctx context.Context, job engine.Job) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		res, err := s.transport.Post(ctx, job.URL, job.Payload)

		var failure error
		var lastStatus *int
		var lastBody string

		switch {
		case err != nil:
			failure = err
			lastBody = err.Error()

		case res.StatusCode >= 200 && res.StatusCode < 300:
			if err := s.log.MarkSucceeded(ctx, job.AttemptID, res.StatusCode, res.Body); err != nil {
				s.logger.Error("failed to record delivery success",
					"attempt_id", job.AttemptID, "error", err)
			}
			s.logger.Info("delivery succeeded",
				"attempt_id", job.AttemptID,
				"subscriber_id", job.SubscriberID,
				"status_code", res.StatusCode,
				"retries", attempt,
			)
			return

		default:
			// Non-2xx is retried regardless of 4xx vs 5xx.
			code := res.StatusCode
			lastStatus = &code
			failure = apperr.New(apperr.WebhookSendingFailed,
				fmt.Sprintf("non-2xx response: %d", res.StatusCode))
			lastBody = res.Body
			if lastBody == "" {
				lastBody = failure.Error()
			}
		}

		if !apperr.CodeOf(failure).Retryable() || attempt == s.maxAttempts-1 {
			if err := s.log.MarkFailed(ctx, job.AttemptID, lastStatus, failure.Error()); err != nil {
				s.logger.Error("failed to record delivery failure",
					"attempt_id", job.AttemptID, "error", err)
			}
			s.logger.Warn("delivery permanently failed",
				"attempt_id", job.AttemptID,
				"subscriber_id", job.SubscriberID,
				"retries", attempt,
				"error", failure,
			)
			return
		}

		if err := sleepContext(ctx, s.backoffFor(attempt)); err != nil {
			// Shutdown mid-backoff: the attempt stays PENDING in the audit.
			s.logger.Warn("delivery cancelled during backoff",
				"attempt_id", job.AttemptID,
				"subscriber_id", job.SubscriberID,
			)
			return
		}

		if err := s.log.IncrementAttempt(ctx, job.AttemptID, lastStatus, lastBody); err != nil {
			s.logger.Error("failed to record retry",
				"attempt_id", job.AttemptID, "error", err)
		}
	}
}

// backoffFor returns the sleep before retry attempt+1: initial backoff
// grown geometrically by the multiplier.
func (s *Sender) backoffFor(attempt int) time.Duration {
	d := float64(s.initialBackoff) * math.Pow(s.backoffMultiplier, float64(attempt))
	if d >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// sleepContext sleeps for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
