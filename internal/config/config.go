package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Webhook dispatch tuning.
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	PerAttemptTimeout time.Duration
	WorkerPoolSize    int

	// Base64-encoded AES key used for card-number encryption.
	EncryptionSecretKey string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		MaxAttempts:         getEnvInt("DISPATCH_MAX_ATTEMPTS", 3),
		InitialBackoff:      time.Duration(getEnvInt("DISPATCH_INITIAL_BACKOFF_MS", 2000)) * time.Millisecond,
		BackoffMultiplier:   getEnvFloat("DISPATCH_BACKOFF_MULTIPLIER", 2.0),
		PerAttemptTimeout:   time.Duration(getEnvInt("DISPATCH_PER_ATTEMPT_TIMEOUT_MS", 10000)) * time.Millisecond,
		WorkerPoolSize:      getEnvInt("DISPATCH_WORKER_POOL_SIZE", 16),
		EncryptionSecretKey: getEnv("ENCRYPTION_SECRET_KEY", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.EncryptionSecretKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_SECRET_KEY is required")
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be >= 1, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff < 0 {
		return nil, fmt.Errorf("DISPATCH_INITIAL_BACKOFF_MS must be >= 0")
	}
	if cfg.BackoffMultiplier < 1.0 {
		return nil, fmt.Errorf("DISPATCH_BACKOFF_MULTIPLIER must be >= 1.0, got %v", cfg.BackoffMultiplier)
	}
	if cfg.PerAttemptTimeout <= 0 {
		return nil, fmt.Errorf("DISPATCH_PER_ATTEMPT_TIMEOUT_MS must be > 0")
	}
	if cfg.WorkerPoolSize < 1 {
		return nil, fmt.Errorf("DISPATCH_WORKER_POOL_SIZE must be >= 1, got %d", cfg.WorkerPoolSize)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
