// Package main is the entry point for the TudoGestão+ background worker.
// It relays the transactional outbox and runs periodic cleanups.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tudogestao/internal/config"
	"tudogestao/internal/infrastructure/messaging"
	"tudogestao/internal/infrastructure/storage/postgres"
	"tudogestao/pkg/logger"
)

const (
	cleanupInterval = time.Hour
	publishedMaxAge = 7 * 24 * time.Hour
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

	if cfg.UseMemoryStore() {
		log.Fatal("DATABASE_URL is required: the outbox lives in PostgreSQL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting tudogestao worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	var handler postgres.OutboxHandler
	if cfg.RedisAddr != "" {
		stream := messaging.NewStreamPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.OutboxStream)
		defer stream.Close()
		if err := stream.Ping(ctx); err != nil {
			log.Fatalw("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		log.Infow("relaying outbox to redis stream", "addr", cfg.RedisAddr, "stream", cfg.OutboxStream)
		handler = stream
	} else {
		log.Warn("REDIS_ADDR is not set; relaying outbox to the log")
		handler = messaging.NewLogHandler(log)
	}

	w := &Worker{
		relay:       postgres.NewOutboxRelay(txManager, cfg.WorkerBatchSize, handler),
		idempotency: postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL),
		interval:    cfg.WorkerPollInterval,
		log:         log.WithComponent("worker"),
	}
	w.Run(ctx)

	log.Info("worker stopped")
}

// Worker polls the outbox until its context is cancelled.
type Worker struct {
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	interval    time.Duration
	log         *logger.Logger
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

// drain processes full batches back to back, then waits for the next tick.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		w.log.Debugw("outbox batch relayed", "count", n)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	if n, err := w.relay.MoveToDLQ(ctx); err != nil {
		w.log.Errorw("failed to move messages to dlq", "error", err)
	} else if n > 0 {
		w.log.Warnw("outbox messages moved to dlq", "count", n)
	}

	if n, err := w.relay.PurgePublished(ctx, publishedMaxAge); err != nil {
		w.log.Errorw("failed to purge published messages", "error", err)
	} else if n > 0 {
		w.log.Infow("purged published outbox messages", "count", n)
	}

	if n, err := w.idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("failed to clean up idempotency keys", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
