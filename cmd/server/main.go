package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-service/internal/api"
	"payment-service/internal/cardcrypto"
	"payment-service/internal/config"
	"payment-service/internal/engine"
	"payment-service/internal/payment"
	"payment-service/internal/store"
	"payment-service/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	if err := pgStore.RunMigrations(ctx, "migrations"); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	redisClient, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	cipher, err := cardcrypto.NewCipher(cfg.EncryptionSecretKey)
	if err != nil {
		logger.Error("failed to initialize card cipher", "error", err)
		os.Exit(1)
	}

	// Dispatch core: transport -> sender -> bounded worker pool.
	transport := engine.NewHTTPTransport(cfg.PerAttemptTimeout)
	sender := worker.NewSender(transport, pgStore, logger,
		cfg.MaxAttempts, cfg.InitialBackoff, cfg.BackoffMultiplier)
	pool := worker.NewPool(cfg.WorkerPoolSize, sender, logger)

	poolCtx, cancelPool := context.WithCancel(ctx)
	pool.Start(poolCtx)

	registry := engine.NewRegistry(pgStore, redisClient, logger)
	dispatcher := engine.NewDispatcher(registry, pgStore, pool, logger)
	paymentService := payment.NewService(pgStore, cipher, dispatcher, logger)

	router := api.NewRouter(
		api.NewWebhookHandler(registry, pgStore, pgStore, logger),
		api.NewPaymentHandler(paymentService),
		api.NewDeliveryHandler(pgStore),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Cancel in-flight backoff sleeps, then wait for the workers to drain.
	cancelPool()
	pool.Stop()

	logger.Info("server stopped")
}
