package engine

import (
	"context"
	"encoding/json"
	"log/slog"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

// SubscriberSource yields the active subscriber snapshot for a dispatch.
type SubscriberSource interface {
	ListActive(ctx context.Context) ([]domain.Subscriber, error)
}

// DeliveryLogCreator records the PENDING audit row before a delivery is
// handed to the workers.
type DeliveryLogCreator interface {
	CreatePending(ctx context.Context, subscriberID int64, url string, payload []byte) (int64, error)
}

// Dispatcher fans a payment outcome out to every active subscriber. It
// returns once the PENDING rows are durably recorded and the work is
// enqueued; the transport I/O happens on the worker pool.
type Dispatcher struct {
	subscribers SubscriberSource
	log         DeliveryLogCreator
	queue       JobQueue
	logger      *slog.Logger
}

func NewDispatcher(subscribers SubscriberSource, log DeliveryLogCreator, queue JobQueue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		subscribers: subscribers,
		log:         log,
		queue:       queue,
		logger:      logger,
	}
}

// Trigger dispatches one event. It never returns an error: the producer's
// payment must not fail because of webhook trouble, so every failure ends
// as a logged warning. A failed dispatch to one subscriber does not stop
// the fan-out to the rest.
func (d *Dispatcher) Trigger(ctx context.Context, event domain.DispatchEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Warn("webhook dispatch aborted",
			"error_code", apperr.WebhookSerializeFailed,
			"transaction_id", event.TransactionID,
			"error", err,
		)
		return
	}

	subscribers, err := d.subscribers.ListActive(ctx)
	if err != nil {
		d.logger.Warn("webhook dispatch aborted",
			"transaction_id", event.TransactionID,
			"error", err,
		)
		return
	}

	if len(subscribers) == 0 {
		d.logger.Debug("no active subscribers", "transaction_id", event.TransactionID)
		return
	}

	queued := 0
	for _, sub := range subscribers {
		attemptID, err := d.log.CreatePending(ctx, sub.ID, sub.URL, payload)
		if err != nil {
			d.logger.Warn("failed to record pending delivery",
				"subscriber_id", sub.ID,
				"transaction_id", event.TransactionID,
				"error", err,
			)
			continue
		}

		err = d.queue.TrySubmit(Job{
			SubscriberID: sub.ID,
			AttemptID:    attemptID,
			URL:          sub.URL,
			Payload:      payload,
		})
		if err != nil {
			// The attempt stays PENDING and is visible in the audit trail.
			d.logger.Warn("delivery queue overflow",
				"subscriber_id", sub.ID,
				"attempt_id", attemptID,
				"error", err,
			)
			continue
		}
		queued++
	}

	d.logger.Info("dispatch complete",
		"transaction_id", event.TransactionID,
		"subscribers", len(subscribers),
		"deliveries_queued", queued,
	)
}
