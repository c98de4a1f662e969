// Package main is the entry point for the TudoGestão+ API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tudogestao/internal/app"
	"tudogestao/internal/config"
	appctx "tudogestao/internal/core/context"
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain/auth"
	v1 "tudogestao/internal/infrastructure/http/v1"
	"tudogestao/internal/infrastructure/http/v1/handlers"
	"tudogestao/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting tudogestao server", "env", cfg.AppEnv, "memory_store", cfg.UseMemoryStore())

	container, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}

	// --- JWT Service ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.Issuer = cfg.JWTIssuer
	jwtService := auth.NewJWTService(jwtConfig)

	if cfg.UseMemoryStore() && !cfg.IsProduction() {
		logDevToken(log, jwtService)
	}

	var db handlers.Pinger
	if pinger := container.DB(); pinger != nil {
		db = pinger
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services: v1.Services{
			Sales:       container.Sales,
			Products:    container.Products,
			Customers:   container.Customers,
			Receivables: container.Receivables,
			AuditReader: container.AuditReader,
		},
		Logger:             log,
		JWTValidator:       jwtService,
		Idempotency:        container.Idempotency,
		DB:                 db,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Release:            cfg.IsProduction(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	container.Close(shutdownCtx)

	log.Info("server stopped")
}

// logDevToken prints an admin token for a fixed demo company so the
// in-memory server can be tried without an identity provider.
func logDevToken(log *logger.Logger, jwtService *auth.JWTService) {
	token, expires, err := jwtService.GenerateAccessToken(appctx.UserContext{
		UserID:    "dev",
		CompanyID: id.MustParse("00000000-0000-7000-8000-000000000001").String(),
		Email:     "dev@localhost",
		Roles:     []string{"admin"},
		IsAdmin:   true,
	})
	if err != nil {
		log.Warnw("failed to issue dev token", "error", err)
		return
	}
	log.Infow("dev token issued", "token", token, "expires_at", expires)
}
