// Package app wires storage, domain services and their hooks together.
package app

import (
	"context"
	"fmt"
	"time"

	"tudogestao/internal/config"
	"tudogestao/internal/core/idempotency"
	"tudogestao/internal/core/numerator"
	"tudogestao/internal/core/tx"
	"tudogestao/internal/domain/audit"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/events"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/internal/domain/sales"
	infranumerator "tudogestao/internal/infrastructure/numerator"
	"tudogestao/internal/infrastructure/storage/memory"
	"tudogestao/internal/infrastructure/storage/postgres"
	"tudogestao/internal/infrastructure/storage/postgres/catalog_repo"
	"tudogestao/internal/infrastructure/storage/postgres/document_repo"
	"tudogestao/internal/infrastructure/storage/postgres/register_repo"
	"tudogestao/pkg/logger"
)

// Repositories is the storage a container is built from.
type Repositories struct {
	Products    products.Repository
	Customers   customers.Repository
	Sales       sales.Repository
	Receivables receivables.Repository
	Movements   stock.Repository

	TxManager   tx.Manager
	Numerator   numerator.Generator
	Events      events.Publisher
	AuditSink   audit.Sink
	AuditReader audit.Reader
	Idempotency idempotency.Store
}

// Container holds the wired services.
type Container struct {
	Sales       *sales.Service
	Products    *products.Service
	Customers   *customers.Service
	Receivables *receivables.Service
	Stock       *stock.Service

	Audit       *audit.Recorder
	AuditReader audit.Reader
	Idempotency idempotency.Store

	// Pool is nil on the in-memory store
	Pool *postgres.Pool

	// Memory is set on the in-memory store
	Memory *memory.Store

	closers []func()
}

// Build wires services over repos.
func Build(repos Repositories, auditTimeout time.Duration) *Container {
	recorder := audit.NewRecorder(repos.AuditSink, auditTimeout)
	stockSvc := stock.NewService(repos.Movements)

	salesSvc := sales.NewService(sales.Deps{
		Repo:      repos.Sales,
		Products:  repos.Products,
		Customers: repos.Customers,
		Stock:     stockSvc,
		Numerator: repos.Numerator,
		TxManager: repos.TxManager,
		Events:    repos.Events,
		Audit:     recorder,
	})
	receivablesSvc := receivables.NewService(repos.Receivables, salesSvc, repos.TxManager, recorder)
	receivablesSvc.RegisterSaleHooks(salesSvc.Hooks())

	return &Container{
		Sales:       salesSvc,
		Products:    products.NewService(repos.Products, stockSvc, repos.TxManager, repos.Events, recorder),
		Customers:   customers.NewService(repos.Customers, recorder),
		Receivables: receivablesSvc,
		Stock:       stockSvc,
		Audit:       recorder,
		AuditReader: repos.AuditReader,
		Idempotency: repos.Idempotency,
	}
}

// NewMemory builds a container over a fresh in-memory store.
func NewMemory(cfg *config.Config) *Container {
	store := memory.NewStore()
	c := Build(MemoryRepositories(store, cfg), cfg.AuditTimeout)
	c.Memory = store
	return c
}

// MemoryRepositories exposes store through the repository interfaces.
func MemoryRepositories(store *memory.Store, cfg *config.Config) Repositories {
	repos := Repositories{
		Products:    store.Products(),
		Customers:   store.Customers(),
		Sales:       store.Sales(),
		Receivables: store.Receivables(),
		Movements:   store.Movements(),
		TxManager:   store,
		Numerator:   store,
		Events:      store,
		AuditSink:   store,
		AuditReader: store,
	}
	if cfg.IdempotencyEnabled {
		repos.Idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}
	return repos
}

// NewPostgres connects to the database and builds a container over it.
// Domain events go to the transactional outbox.
func NewPostgres(ctx context.Context, cfg *config.Config) (*Container, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	txm := postgres.NewTxManager(pool)

	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit store: %w", err)
	}

	repos := Repositories{
		Products:    catalog_repo.NewProductRepo(txm),
		Customers:   catalog_repo.NewCustomerRepo(txm),
		Sales:       document_repo.NewSaleRepo(txm),
		Receivables: document_repo.NewReceivableRepo(txm),
		Movements:   register_repo.NewStockRepo(txm),
		TxManager:   txm,
		Numerator: infranumerator.NewWithQuerierFunc(func(ctx context.Context) infranumerator.Querier {
			return txm.GetQuerier(ctx)
		}),
		Events:      postgres.NewOutboxPublisher(txm),
		AuditSink:   auditStore,
		AuditReader: auditStore,
	}
	if cfg.IdempotencyEnabled {
		repos.Idempotency = postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL)
	}

	c := Build(repos, cfg.AuditTimeout)
	c.Pool = pool
	c.closers = append(c.closers, pool.Close)
	return c, nil
}

// New picks the store from cfg.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg.UseMemoryStore() {
		logger.Warn(ctx, "DATABASE_URL is not set; using the in-memory store")
		return NewMemory(cfg), nil
	}
	return NewPostgres(ctx, cfg)
}

// DB returns the pool for readiness checks, or nil on the in-memory store.
func (c *Container) DB() interface{ Ping(context.Context) error } {
	if c.Pool == nil {
		return nil
	}
	return c.Pool
}

// Close waits for pending audit writes, then releases storage.
func (c *Container) Close(ctx context.Context) {
	if err := c.Audit.Wait(ctx); err != nil {
		logger.Warn(ctx, "audit writes still pending at shutdown", "error", err)
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
