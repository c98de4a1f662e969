package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.UseMemoryStore())
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "tudogestao:events", cfg.OutboxStream)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/tudogestao")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("IDEMPOTENCY_ENABLED", "false")
	t.Setenv("AUDIT_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://pdv.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.UseMemoryStore())
	assert.Equal(t, 40, cfg.DBMaxConns)
	assert.False(t, cfg.IdempotencyEnabled)
	assert.Equal(t, 2*time.Second, cfg.AuditTimeout)
	assert.Equal(t, []string{"https://admin.example.com", "https://pdv.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("WORKER_POLL_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.DBMaxConns)
	assert.Equal(t, time.Second, cfg.WorkerPollInterval)
}

func TestValidate_Production(t *testing.T) {
	cfg := &Config{
		AppEnv:             "production",
		DBMaxConns:         10,
		DBMinConns:         1,
		WorkerBatchSize:    10,
		CORSAllowedOrigins: []string{"https://admin.example.com"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg.JWTSecret = "s3cret"
	cfg.DatabaseURL = "postgres://db/tudogestao"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EmptyCORSOriginsRejected(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/tudogestao")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
