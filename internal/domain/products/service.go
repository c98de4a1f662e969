package products

import (
	"context"
	"fmt"
	"strings"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/tx"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/audit"
	"tudogestao/internal/domain/events"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/pkg/logger"
)

// Service provides product catalog and stock operations.
type Service struct {
	repo      Repository
	stock     *stock.Service
	txManager tx.Manager
	events    events.Publisher
	audit     *audit.Recorder
}

func NewService(
	repo Repository,
	stockSvc *stock.Service,
	txManager tx.Manager,
	publisher events.Publisher,
	recorder *audit.Recorder,
) *Service {
	if publisher == nil {
		publisher = events.Nop
	}
	return &Service{
		repo:      repo,
		stock:     stockSvc,
		txManager: txManager,
		events:    publisher,
		audit:     recorder,
	}
}

// Create registers a new product. Initial stock is recorded in the journal.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByCode(ctx, p.CompanyID, p.Code); err == nil {
			return apperror.NewDuplicate(EntityName, "code", p.Code)
		} else if !apperror.IsNotFound(err) {
			return fmt.Errorf("check code: %w", err)
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		if p.Stock > 0 {
			return s.stock.RecordMovements(ctx, []entity.StockMovement{
				stock.Movement(p.CompanyID, p.ID, stock.RecorderStockUpdate, entity.RecordTypeReceipt, p.ID, p.Stock, "initial stock"),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.ActionCreate, EntityName, p.ID, p.auditState())
	logger.Info(ctx, "product created", "id", p.ID, "code", p.Code)
	return nil
}

func (s *Service) Get(ctx context.Context, companyID, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, companyID, productID)
}

// UpdateInput replaces the catalog fields of a product. Stock is not part of it.
type UpdateInput struct {
	Code      string
	Name      string
	Barcode   *string
	Unit      string
	SalePrice types.Money
	CostPrice types.Money
	MinStock  int
	Active    bool

	// Version is the version the client read; a mismatch is a concurrent modification
	Version int
}

// Update changes catalog fields with optimistic locking.
func (s *Service) Update(ctx context.Context, companyID, productID id.ID, in UpdateInput) (*Product, error) {
	var (
		updated *Product
		before  map[string]any
	)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, companyID, productID)
		if err != nil {
			return err
		}
		if in.Version != 0 && in.Version != current.Version {
			return apperror.NewConcurrentModification(EntityName, productID)
		}
		before = current.auditState()

		code := strings.TrimSpace(in.Code)
		if code != current.Code {
			if _, err := s.repo.GetByCode(ctx, companyID, code); err == nil {
				return apperror.NewDuplicate(EntityName, "code", code)
			} else if !apperror.IsNotFound(err) {
				return fmt.Errorf("check code: %w", err)
			}
		}

		next := *current
		next.Code = code
		next.Name = strings.TrimSpace(in.Name)
		next.Barcode = in.Barcode
		if in.Unit != "" {
			next.Unit = in.Unit
		}
		next.SalePrice = in.SalePrice
		next.CostPrice = in.CostPrice
		next.MinStock = in.MinStock
		next.Active = in.Active

		if err := next.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ActionUpdate, EntityName, productID, audit.Diff(before, updated.auditState()))
	return updated, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// LowStock lists products whose stock is at or below their minimum.
func (s *Service) LowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.FindLowStock(ctx, filter.Normalize())
}

// Movements returns the stock journal of a product.
func (s *Service) Movements(ctx context.Context, companyID, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	if _, err := s.repo.GetByID(ctx, companyID, productID); err != nil {
		return nil, err
	}
	return s.stock.History(ctx, companyID, productID, filter)
}

// UpdateStock adds or removes quantity. A decrement larger than the
// stock on hand fails with InsufficientStock and changes nothing.
func (s *Service) UpdateStock(ctx context.Context, companyID, productID id.ID, quantity int, op StockOperation) (*Product, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be greater than zero").WithDetail("field", "quantity")
	}
	if !op.Valid() {
		return nil, apperror.NewValidation("operation must be add or decrement").WithDetail("field", "operation")
	}

	var product *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		recordType := entity.RecordTypeReceipt
		switch op {
		case StockAdd:
			ok, err := s.repo.IncrementStock(ctx, companyID, productID, quantity)
			if err != nil {
				return fmt.Errorf("increment stock: %w", err)
			}
			if !ok {
				return apperror.NewNotFound(EntityName, productID)
			}
		case StockDecrement:
			recordType = entity.RecordTypeExpense
			ok, err := s.repo.DecrementStock(ctx, companyID, productID, quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return s.shortage(ctx, companyID, productID, quantity)
			}
		}

		if err := s.stock.RecordMovements(ctx, []entity.StockMovement{
			stock.Movement(companyID, productID, stock.RecorderStockUpdate, recordType, productID, quantity, string(op)),
		}); err != nil {
			return err
		}

		var err error
		product, err = s.repo.GetByID(ctx, companyID, productID)
		if err != nil {
			return err
		}
		return s.publishStockChanged(ctx, product, signed(recordType, quantity), string(op))
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ActionStockUpdate, EntityName, productID, map[string]any{
		"operation": string(op),
		"quantity":  quantity,
		"stock":     product.Stock,
	})
	return product, nil
}

// AdjustStock applies a signed manual correction. A correction that would
// make stock negative fails with InvalidAdjustment.
func (s *Service) AdjustStock(ctx context.Context, companyID, productID id.ID, adjustment int, reason string) (*Product, error) {
	if adjustment == 0 {
		return nil, apperror.NewValidation("adjustment must be non-zero").WithDetail("field", "adjustment")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual adjustment"
	}

	var product *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, ok, err := s.repo.AdjustStock(ctx, companyID, productID, adjustment)
		if err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		if !ok {
			current, err := s.repo.GetByID(ctx, companyID, productID)
			if err != nil {
				return err
			}
			return apperror.NewInvalidAdjustment(productID.String(), current.Stock, adjustment)
		}

		recordType, qty := entity.RecordTypeReceipt, adjustment
		if adjustment < 0 {
			recordType, qty = entity.RecordTypeExpense, -adjustment
		}
		if err := s.stock.RecordMovements(ctx, []entity.StockMovement{
			stock.Movement(companyID, productID, stock.RecorderAdjustment, recordType, productID, qty, reason),
		}); err != nil {
			return err
		}

		product, err = s.repo.GetByID(ctx, companyID, productID)
		if err != nil {
			return err
		}
		return s.publishStockChanged(ctx, product, adjustment, reason)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ActionStockAdjust, EntityName, productID, map[string]any{
		"adjustment": adjustment,
		"reason":     reason,
		"stock":      product.Stock,
	})
	logger.Info(ctx, "stock adjusted", "product_id", productID, "adjustment", adjustment, "stock", product.Stock)
	return product, nil
}

// shortage turns a failed conditional decrement into the right error.
func (s *Service) shortage(ctx context.Context, companyID, productID id.ID, requested int) error {
	current, err := s.repo.GetByID(ctx, companyID, productID)
	if err != nil {
		return err
	}
	return apperror.NewInsufficientStock(productID.String(), requested, current.Stock)
}

func (s *Service) publishStockChanged(ctx context.Context, p *Product, delta int, reason string) error {
	return s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateProduct,
		AggregateID:   p.ID,
		CompanyID:     p.CompanyID,
		EventType:     events.StockChanged,
		Payload: map[string]any{
			"productId": p.ID,
			"code":      p.Code,
			"delta":     delta,
			"stock":     p.Stock,
			"lowStock":  p.IsLowStock(),
			"reason":    reason,
		},
	})
}

func signed(rt entity.RecordType, qty int) int {
	if rt == entity.RecordTypeExpense {
		return -qty
	}
	return qty
}
