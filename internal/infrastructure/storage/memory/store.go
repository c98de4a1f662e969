// Package memory provides an in-process implementation of every repository,
// the transaction manager and the numerator. It backs the server when no
// database is configured and the domain tests.
//
// Transactions are serialized by a single mutex and roll back by restoring
// a snapshot taken at BEGIN.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/numerator"
	"tudogestao/internal/core/tx"
	"tudogestao/internal/domain/audit"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/events"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/internal/domain/sales"
)

type dataset struct {
	products    map[id.ID]products.Product
	customers   map[id.ID]customers.Customer
	sales       map[id.ID]sales.Sale
	saleItems   map[id.ID][]sales.SaleItem
	receivables map[id.ID]receivables.Receivable
	movements   []entity.StockMovement
	sequences   map[string]int64
	outbox      []events.Event
}

func newDataset() *dataset {
	return &dataset{
		products:    make(map[id.ID]products.Product),
		customers:   make(map[id.ID]customers.Customer),
		sales:       make(map[id.ID]sales.Sale),
		saleItems:   make(map[id.ID][]sales.SaleItem),
		receivables: make(map[id.ID]receivables.Receivable),
		sequences:   make(map[string]int64),
	}
}

func (d *dataset) clone() *dataset {
	items := make(map[id.ID][]sales.SaleItem, len(d.saleItems))
	for k, v := range d.saleItems {
		items[k] = slices.Clone(v)
	}
	return &dataset{
		products:    maps.Clone(d.products),
		customers:   maps.Clone(d.customers),
		sales:       maps.Clone(d.sales),
		saleItems:   items,
		receivables: maps.Clone(d.receivables),
		movements:   slices.Clone(d.movements),
		sequences:   maps.Clone(d.sequences),
		outbox:      slices.Clone(d.outbox),
	}
}

// Store holds all data in memory.
type Store struct {
	txMu sync.Mutex

	mu    sync.RWMutex
	data  *dataset
	audit []audit.Entry
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

type txKey struct{}

var (
	_ tx.Manager          = (*Store)(nil)
	_ numerator.Generator = (*Store)(nil)
	_ events.Publisher    = (*Store)(nil)
	_ audit.Sink          = (*Store)(nil)
	_ audit.Reader        = (*Store)(nil)
)

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// lockWrite locks the dataset for a write. A write outside a transaction also
// holds txMu, so a concurrent rollback cannot restore a snapshot over it.
func (s *Store) lockWrite(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) restore(snapshot *dataset) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// GetNextNumber implements numerator.Generator. The counter is part of the
// transactional dataset, so a rolled back sale releases its number.
func (s *Store) GetNextNumber(ctx context.Context, cfg numerator.Config, scope string, period time.Time) (string, error) {
	key := numerator.Key(cfg, scope, period)

	unlock := s.lockWrite(ctx)
	s.data.sequences[key]++
	n := s.data.sequences[key]
	unlock()

	return numerator.Format(cfg, period, n), nil
}

// Publish implements events.Publisher.
func (s *Store) Publish(ctx context.Context, event events.Event) error {
	unlock := s.lockWrite(ctx)
	s.data.outbox = append(s.data.outbox, event)
	unlock()
	return nil
}

// PublishedEvents returns the committed events in publish order.
func (s *Store) PublishedEvents() []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.outbox)
}

// Write implements audit.Sink. Audit entries survive rollbacks like a separate connection would.
func (s *Store) Write(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	s.audit = append(s.audit, entry)
	s.mu.Unlock()
	return nil
}

// History implements audit.Reader.
func (s *Store) History(ctx context.Context, companyID id.ID, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Entry
	for i := len(s.audit) - 1; i >= 0; i-- {
		e := s.audit[i]
		if e.CompanyID == companyID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Repository accessors.

func (s *Store) Products() products.Repository       { return &productRepo{s} }
func (s *Store) Customers() customers.Repository     { return &customerRepo{s} }
func (s *Store) Sales() sales.Repository             { return &saleRepo{s} }
func (s *Store) Receivables() receivables.Repository { return &receivableRepo{s} }
func (s *Store) Movements() stock.Repository         { return &movementRepo{s} }

// page applies offset/limit to a sorted slice.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
