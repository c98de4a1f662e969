// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server and worker settings.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	// DatabaseURL selects PostgreSQL; empty runs on the in-memory store
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string

	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	AuditTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OutboxStream  string

	WorkerPollInterval time.Duration
	WorkerBatchSize    int
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:  getEnvInt("DB_MIN_CONNS", 2),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "tudogestao"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		AuditTimeout: getEnvDuration("AUDIT_TIMEOUT", 5*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		OutboxStream:  getEnv("OUTBOX_STREAM", "tudogestao:events"),

		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", time.Second),
		WorkerBatchSize:    getEnvInt("WORKER_BATCH_SIZE", 100),
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UseMemoryStore reports whether no database is configured.
func (c *Config) UseMemoryStore() bool {
	return c.DatabaseURL == ""
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	if len(c.CORSAllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin"))
	}
	if c.WorkerBatchSize <= 0 {
		errs = append(errs, errors.New("WORKER_BATCH_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
