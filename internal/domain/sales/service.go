package sales

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/numerator"
	"tudogestao/internal/core/tx"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/audit"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/events"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/pkg/logger"
)

// Deps are the collaborators of Service.
type Deps struct {
	Repo      Repository
	Products  products.Repository
	Customers customers.Repository
	Stock     *stock.Service
	Numerator numerator.Generator
	TxManager tx.Manager
	Events    events.Publisher
	Audit     *audit.Recorder
}

// Service implements the sale lifecycle: create, cancel, delete and status updates.
// Every operation that touches both a sale and product stock runs in one transaction.
type Service struct {
	repo      Repository
	products  products.Repository
	customers customers.Repository
	stock     *stock.Service
	numerator numerator.Generator
	txManager tx.Manager
	events    events.Publisher
	audit     *audit.Recorder
	hooks     *domain.HookRegistry[*Sale]
}

func NewService(d Deps) *Service {
	if d.Events == nil {
		d.Events = events.Nop
	}
	return &Service{
		repo:      d.Repo,
		products:  d.Products,
		customers: d.Customers,
		stock:     d.Stock,
		numerator: d.Numerator,
		txManager: d.TxManager,
		events:    d.Events,
		audit:     d.Audit,
		hooks:     domain.NewHookRegistry[*Sale](),
	}
}

// Hooks returns the hook registry. Hooks run inside the operation's transaction.
func (s *Service) Hooks() *domain.HookRegistry[*Sale] {
	return s.hooks
}

// Create validates stock, numbers the sale, persists it and decrements stock atomically.
// On any failure nothing is persisted and no stock changes.
func (s *Service) Create(ctx context.Context, in CreateSaleInput) (*Sale, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customers.GetByID(ctx, in.CompanyID, in.CustomerID)
		if err != nil {
			return err
		}

		requested := make(map[id.ID]int, len(in.Items))
		for _, it := range in.Items {
			requested[it.ProductID] += it.Quantity
		}

		catalog := make(map[id.ID]*products.Product, len(requested))
		for _, productID := range sortedIDs(requested) {
			p, err := s.products.GetByID(ctx, in.CompanyID, productID)
			if err != nil {
				return err
			}
			if p.Stock < requested[productID] {
				return apperror.NewInsufficientStock(productID.String(), requested[productID], p.Stock).
					WithDetail("product_name", p.Name)
			}
			catalog[productID] = p
		}

		sale = NewSale(in.CompanyID, in.CustomerID)
		sale.Date = in.Date
		sale.Notes = in.Notes
		sale.CreatedBy = in.CreatedBy
		sale.PaymentMethod = in.PaymentMethod
		sale.Installments = in.Installments
		for i, it := range in.Items {
			price := catalog[it.ProductID].SalePrice
			if it.UnitPrice != nil {
				price = *it.UnitPrice
			}
			item := SaleItem{Quantity: it.Quantity, UnitPrice: price}
			if it.Discount.GreaterThan(item.Gross()) {
				return apperror.NewValidation("item discount cannot exceed the line total").
					WithDetail("field", fmt.Sprintf("items[%d].discount", i))
			}
			sale.AddItem(it.ProductID, it.Quantity, price, it.Discount)
		}
		sale.SetDiscount(in.Discount)

		if err := sale.Validate(ctx); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numerator.SaleConfig(), in.CompanyID.String(), sale.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		sale.Number = number

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveItems(ctx, sale.ID, sale.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		for _, productID := range sortedIDs(requested) {
			qty := requested[productID]
			ok, err := s.products.DecrementStock(ctx, in.CompanyID, productID, qty)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				// a concurrent sale took the stock after our read
				current, err := s.products.GetByID(ctx, in.CompanyID, productID)
				if err != nil {
					return err
				}
				return apperror.NewInsufficientStock(productID.String(), qty, current.Stock)
			}
		}

		if err := s.stock.RecordMovements(ctx, s.movements(sale, entity.RecordTypeExpense, "sale")); err != nil {
			return err
		}

		sale.Customer = customer
		if err := s.publish(ctx, sale, events.SaleCreated); err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterCreate, sale)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ActionCreate, EntityName, sale.ID, map[string]any{
		"number":    sale.Number,
		"netAmount": sale.NetAmount.StringFixed(2),
		"items":     len(sale.Items),
	})
	logger.Info(ctx, "sale created",
		"id", sale.ID,
		"number", sale.Number,
		"net_amount", sale.NetAmount.StringFixed(2),
	)
	if !sale.ItemDiscountTotal().IsZero() {
		logger.Warn(ctx, "item discounts are not subtracted from the sale subtotal",
			"id", sale.ID,
			"item_discount_total", sale.ItemDiscountTotal().StringFixed(2),
		)
	}
	return sale, nil
}

// Cancel returns the items to stock and marks the sale CANCELLED.
func (s *Service) Cancel(ctx context.Context, companyID, saleID id.ID) (*Sale, error) {
	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.loadForUpdate(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		if sale.Status == StatusCancelled {
			return apperror.NewAlreadyCancelled(EntityName, saleID)
		}

		if err := s.reverseStock(ctx, sale, "sale cancelled"); err != nil {
			return err
		}

		sale.Status = StatusCancelled
		if err := s.repo.Update(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		if err := s.publish(ctx, sale, events.SaleCancelled); err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterCancel, sale)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ActionCancel, EntityName, sale.ID, map[string]any{"number": sale.Number})
	logger.Info(ctx, "sale cancelled", "id", sale.ID, "number", sale.Number)
	return sale, nil
}

// Delete removes a sale that has no payments. Stock is returned unless
// a previous cancel already returned it.
func (s *Service) Delete(ctx context.Context, companyID, saleID id.ID) error {
	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.loadForUpdate(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		if err := sale.CanDelete(); err != nil {
			return err
		}

		if err := s.reverseStock(ctx, sale, "sale deleted"); err != nil {
			return err
		}

		if err := s.hooks.Run(ctx, domain.BeforeDelete, sale); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, companyID, saleID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		return s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateSale,
			AggregateID:   sale.ID,
			CompanyID:     sale.CompanyID,
			EventType:     events.SaleDeleted,
			Payload:       map[string]any{"id": sale.ID, "number": sale.Number},
		})
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.ActionDelete, EntityName, sale.ID, map[string]any{
		"number": sale.Number,
		"status": string(sale.Status),
	})
	logger.Info(ctx, "sale deleted", "id", sale.ID, "number", sale.Number)
	return nil
}

// UpdateStatus moves a sale along PENDING → PARTIAL → PAID.
// CANCELLED goes through Cancel so stock is returned.
func (s *Service) UpdateStatus(ctx context.Context, companyID, saleID id.ID, next Status) (*Sale, error) {
	if !next.Valid() {
		return nil, apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(next))
	}
	if next == StatusCancelled {
		return s.Cancel(ctx, companyID, saleID)
	}

	var (
		sale    *Sale
		from    Status
		changed bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.loadForUpdate(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		from = sale.Status
		if from == next {
			return nil
		}
		if !from.CanTransition(next) {
			return apperror.NewInvalidState(fmt.Sprintf("cannot change sale status from %s to %s", from, next)).
				WithDetail("from", string(from)).
				WithDetail("to", string(next))
		}

		changed = true
		return s.setStatus(ctx, sale, next)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.audit.Record(ctx, audit.ActionStatusChange, EntityName, sale.ID, map[string]any{
			"from": string(from),
			"to":   string(next),
		})
	}
	return sale, nil
}

// SettleInTx locks the sale and then runs settle, which pays receivables of
// the sale and reports whether all of them are paid. A PENDING or PARTIAL sale
// is then promoted to PAID. Concurrent settlements of the same sale run one
// after another. It must be called inside the caller's transaction and
// returns the sale when it was promoted.
func (s *Service) SettleInTx(ctx context.Context, companyID, saleID id.ID, settle func(ctx context.Context) (bool, error)) (*Sale, error) {
	sale, err := s.loadForUpdate(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}

	ok, err := settle(ctx)
	if err != nil || !ok {
		return nil, err
	}
	if sale.Status != StatusPending && sale.Status != StatusPartial {
		return nil, nil
	}

	if err := s.setStatus(ctx, sale, StatusPaid); err != nil {
		return nil, err
	}
	return sale, nil
}

// Get returns a sale with its items and customer.
func (s *Service) Get(ctx context.Context, companyID, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *Service) setStatus(ctx context.Context, sale *Sale, next Status) error {
	sale.Status = next
	if err := s.repo.Update(ctx, sale); err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if next == StatusPaid {
		if err := s.populateCustomer(ctx, sale); err != nil {
			return err
		}
		if err := s.publish(ctx, sale, events.SalePaid); err != nil {
			return err
		}
	}
	return s.hooks.Run(ctx, domain.AfterStatusChange, sale)
}

// loadForUpdate locks the sale and loads its items.
func (s *Service) loadForUpdate(ctx context.Context, companyID, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetForUpdate(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	sale.Items = items
	return sale, nil
}

// reverseStock returns item quantities to stock once per sale.
func (s *Service) reverseStock(ctx context.Context, sale *Sale, reason string) error {
	if sale.StockReversed {
		return nil
	}

	quantities := sale.Quantities()
	for _, productID := range sortedIDs(quantities) {
		ok, err := s.products.IncrementStock(ctx, sale.CompanyID, productID, quantities[productID])
		if err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		if !ok {
			return apperror.NewNotFound(products.EntityName, productID)
		}
	}

	if err := s.stock.RecordMovements(ctx, s.movements(sale, entity.RecordTypeReceipt, reason)); err != nil {
		return err
	}
	sale.StockReversed = true
	return nil
}

func (s *Service) movements(sale *Sale, rt entity.RecordType, reason string) []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(sale.Items))
	for _, it := range sale.Items {
		out = append(out, stock.Movement(sale.CompanyID, sale.ID, stock.RecorderSale, rt, it.ProductID, it.Quantity, reason))
	}
	return out
}

func (s *Service) publish(ctx context.Context, sale *Sale, eventType string) error {
	return s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateSale,
		AggregateID:   sale.ID,
		CompanyID:     sale.CompanyID,
		EventType:     eventType,
		Payload:       sale,
	})
}

func (s *Service) populate(ctx context.Context, sale *Sale) error {
	items, err := s.repo.GetItems(ctx, sale.ID)
	if err != nil {
		return fmt.Errorf("get items: %w", err)
	}
	sale.Items = items
	return s.populateCustomer(ctx, sale)
}

func (s *Service) populateCustomer(ctx context.Context, sale *Sale) error {
	if sale.Customer != nil {
		return nil
	}
	c, err := s.customers.GetByID(ctx, sale.CompanyID, sale.CustomerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("get customer: %w", err)
	}
	sale.Customer = c
	return nil
}

// sortedIDs returns map keys in a fixed order so concurrent transactions
// lock product rows in the same sequence.
func sortedIDs(m map[id.ID]int) []id.ID {
	ids := make([]id.ID, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	slices.SortFunc(ids, func(a, b id.ID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// DueDate returns the due date of an installment: 30 days per installment after the sale date.
func DueDate(saleDate time.Time, installment int) time.Time {
	return saleDate.AddDate(0, 0, 30*installment)
}
