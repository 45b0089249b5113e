package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/payments")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ENCRYPTION_SECRET_KEY", "c2l4dGVlbi1ieXRlLWtleQ==")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.InitialBackoff)
	assert.Equal(t, 2.0, cfg.BackoffMultiplier)
	assert.Equal(t, 10*time.Second, cfg.PerAttemptTimeout)
	assert.Equal(t, 16, cfg.WorkerPoolSize)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DISPATCH_MAX_ATTEMPTS", "5")
	t.Setenv("DISPATCH_INITIAL_BACKOFF_MS", "100")
	t.Setenv("DISPATCH_BACKOFF_MULTIPLIER", "1.5")
	t.Setenv("DISPATCH_PER_ATTEMPT_TIMEOUT_MS", "2500")
	t.Setenv("DISPATCH_WORKER_POOL_SIZE", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 1.5, cfg.BackoffMultiplier)
	assert.Equal(t, 2500*time.Millisecond, cfg.PerAttemptTimeout)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing database url", "DATABASE_URL"},
		{"missing redis url", "REDIS_URL"},
		{"missing encryption key", "ENCRYPTION_SECRET_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.unset)
		})
	}
}

func TestLoad_RejectsInvalidTuning(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero max attempts", "DISPATCH_MAX_ATTEMPTS", "0"},
		{"multiplier below one", "DISPATCH_BACKOFF_MULTIPLIER", "0.5"},
		{"zero timeout", "DISPATCH_PER_ATTEMPT_TIMEOUT_MS", "0"},
		{"zero workers", "DISPATCH_WORKER_POOL_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MalformedNumberFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("DISPATCH_MAX_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxAttempts)
}
