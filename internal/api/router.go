package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(webhooks *WebhookHandler, payments *PaymentHandler, deliveries *DeliveryHandler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", HealthHandler())

		r.Post("/payments", payments.Create)

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/register", webhooks.Register)
			r.Post("/receive", webhooks.Receive)
			r.Get("/", webhooks.List)
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", deliveries.List)
			r.Get("/{id}", deliveries.Get)
		})
	})

	return r
}
