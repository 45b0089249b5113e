package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
)

const (
	activeSubscribersKey = "webhooks:active_subscribers"
	subscriberCacheTTL   = 30 * time.Second
)

// SubscriberStore is the persistence surface the registry needs.
type SubscriberStore interface {
	CreateSubscriber(ctx context.Context, url string) (*domain.Subscriber, error)
	ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error)
}

// Registry owns subscriber registration and the cached active listing.
// Uniqueness is enforced by the store's partial unique index, so concurrent
// registrations of one URL resolve to exactly one winner.
type Registry struct {
	store    SubscriberStore
	cache    *redis.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRegistry creates a registry. cache may be nil; listing then always
// hits the store.
func NewRegistry(store SubscriberStore, cache *redis.Client, logger *slog.Logger) *Registry {
	return &Registry{
		store:    store,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register validates and persists a new active subscriber, then drops the
// cached listing so the next dispatch sees it.
func (r *Registry) Register(ctx context.Context, rawURL string) (*domain.Subscriber, error) {
	targetURL := strings.TrimSpace(rawURL)

	if err := r.validate.Var(targetURL, "required,max=255,http_url"); err != nil {
		return nil, apperr.New(apperr.ValidationError,
			"url must be an absolute http or https URL of at most 255 characters")
	}

	sub, err := r.store.CreateSubscriber(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	r.invalidateCache(ctx)

	r.logger.Info("webhook registered", "subscriber_id", sub.ID, "url", sub.URL)
	return sub, nil
}

// ListActive returns the active subscriber snapshot, served from the redis
// cache when fresh. Cache faults degrade to the store.
func (r *Registry) ListActive(ctx context.Context) ([]domain.Subscriber, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, activeSubscribersKey).Bytes(); err == nil {
			var subs []domain.Subscriber
			if json.Unmarshal(data, &subs) == nil {
				return subs, nil
			}
		}
	}

	subs, err := r.store.ListActiveSubscribers(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(subs); err == nil {
			if err := r.cache.Set(ctx, activeSubscribersKey, data, subscriberCacheTTL).Err(); err != nil {
				r.logger.Warn("failed to cache subscriber list", "error", err)
			}
		}
	}

	return subs, nil
}

func (r *Registry) invalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, activeSubscribersKey).Err(); err != nil {
		r.logger.Warn("failed to invalidate subscriber cache", "error", err)
	}
}
