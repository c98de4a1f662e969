package receivables

import (
	"context"
	"fmt"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/tx"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/audit"
	"tudogestao/internal/domain/sales"
	"tudogestao/pkg/logger"
)

// Sales is the part of the sale lifecycle receivables depend on.
type Sales interface {
	Get(ctx context.Context, companyID, saleID id.ID) (*sales.Sale, error)
	SettleInTx(ctx context.Context, companyID, saleID id.ID, settle func(ctx context.Context) (bool, error)) (*sales.Sale, error)
}

type Service struct {
	repo      Repository
	sales     Sales
	txManager tx.Manager
	audit     *audit.Recorder
}

func NewService(repo Repository, salesSvc Sales, txManager tx.Manager, recorder *audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		sales:     salesSvc,
		txManager: txManager,
		audit:     recorder,
	}
}

// RegisterSaleHooks generates installments for new sales and removes
// receivables of deleted sales, inside the sale's transaction.
func (s *Service) RegisterSaleHooks(hooks *domain.HookRegistry[*sales.Sale]) {
	hooks.OnAfterCreate(s.GenerateForSale)
	hooks.On(domain.BeforeDelete, s.DeleteForSale)
}

// CreateInput describes a standalone receivable.
type CreateInput struct {
	CompanyID   id.ID
	SaleID      *id.ID
	CustomerID  *id.ID
	Description string
	Amount      types.Money
	DueDate     time.Time
}

// Create registers a receivable. A linked sale must belong to the same company
// and must not be cancelled.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Receivable, error) {
	r := NewReceivable(in.CompanyID, in.Description, in.Amount, in.DueDate)
	r.CustomerID = in.CustomerID
	r.SaleID = in.SaleID
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}

	if in.SaleID != nil {
		sale, err := s.sales.Get(ctx, in.CompanyID, *in.SaleID)
		if err != nil {
			return nil, err
		}
		if sale.Status == sales.StatusCancelled {
			return nil, apperror.NewInvalidState("cannot add a receivable to a cancelled sale")
		}
		if r.CustomerID == nil {
			r.CustomerID = id.Ptr(sale.CustomerID)
		}
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create receivable: %w", err)
	}

	s.audit.Record(ctx, audit.ActionCreate, EntityName, r.ID, map[string]any{"amount": r.Amount.StringFixed(2)})
	return r, nil
}

// GenerateForSale splits the net amount of a sale paid by bank slip or store
// credit into monthly installments.
func (s *Service) GenerateForSale(ctx context.Context, sale *sales.Sale) error {
	if !sale.PaymentMethod.SettlesLater() || !sale.NetAmount.IsPositive() {
		return nil
	}

	parts := types.Split(sale.NetAmount, sale.Installments)
	for i, amount := range parts {
		n := i + 1
		r := NewReceivable(sale.CompanyID,
			fmt.Sprintf("%s installment %d/%d", sale.Number, n, len(parts)),
			amount,
			sales.DueDate(sale.Date, n),
		)
		r.SaleID = id.Ptr(sale.ID)
		r.CustomerID = id.Ptr(sale.CustomerID)
		r.InstallmentNo = n

		if err := s.repo.Create(ctx, r); err != nil {
			return fmt.Errorf("create installment %d: %w", n, err)
		}
	}

	logger.Debug(ctx, "installments generated", "sale_id", sale.ID, "count", len(parts))
	return nil
}

// DeleteForSale removes the receivables of a sale being deleted.
// A sale with any paid receivable keeps its history and cannot be deleted.
func (s *Service) DeleteForSale(ctx context.Context, sale *sales.Sale) error {
	existing, err := s.repo.ListBySale(ctx, sale.CompanyID, sale.ID)
	if err != nil {
		return fmt.Errorf("list receivables: %w", err)
	}
	for _, r := range existing {
		if r.IsPaid() {
			return apperror.NewInvalidState("cannot delete a sale with paid receivables").
				WithDetail("receivable_id", r.ID.String())
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return s.repo.DeleteBySale(ctx, sale.CompanyID, sale.ID)
}

// MarkPaid settles a receivable. When it is the last open receivable of its
// sale, the sale is promoted to PAID in the same transaction.
// Paying an already paid receivable returns it unchanged.
// A linked sale is locked before the receivable, the order Delete uses.
func (s *Service) MarkPaid(ctx context.Context, companyID, receivableID id.ID) (*Receivable, error) {
	var (
		rec      *Receivable
		promoted *sales.Sale
		changed  bool
	)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, companyID, receivableID)
		if err != nil {
			return err
		}
		if current.SaleID == nil {
			rec, changed, err = s.pay(ctx, companyID, receivableID)
			return err
		}

		saleID := *current.SaleID
		promoted, err = s.sales.SettleInTx(ctx, companyID, saleID, func(ctx context.Context) (bool, error) {
			var payErr error
			rec, changed, payErr = s.pay(ctx, companyID, receivableID)
			if payErr != nil || !changed {
				return false, payErr
			}
			return s.allPaid(ctx, companyID, saleID)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.audit.Record(ctx, audit.ActionPaid, EntityName, rec.ID, map[string]any{"amount": rec.Amount.StringFixed(2)})
	}
	if promoted != nil {
		s.audit.Record(ctx, audit.ActionStatusChange, sales.EntityName, promoted.ID, map[string]any{"to": string(sales.StatusPaid)})
		logger.Info(ctx, "sale settled", "sale_id", promoted.ID, "number", promoted.Number)
	}
	return rec, nil
}

// pay locks the receivable and marks it paid. It reports false when the
// receivable was already paid.
func (s *Service) pay(ctx context.Context, companyID, receivableID id.ID) (*Receivable, bool, error) {
	rec, err := s.repo.GetForUpdate(ctx, companyID, receivableID)
	if err != nil {
		return nil, false, err
	}
	if rec.IsPaid() {
		return rec, false, nil
	}

	now := time.Now().UTC()
	rec.Status = StatusPaid
	rec.PaidAt = &now
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("update receivable: %w", err)
	}
	return rec, true, nil
}

func (s *Service) allPaid(ctx context.Context, companyID, saleID id.ID) (bool, error) {
	all, err := s.repo.ListBySale(ctx, companyID, saleID)
	if err != nil {
		return false, fmt.Errorf("list receivables: %w", err)
	}
	for _, r := range all {
		if !r.IsPaid() {
			return false, nil
		}
	}
	return len(all) > 0, nil
}

func (s *Service) Get(ctx context.Context, companyID, receivableID id.ID) (*Receivable, error) {
	return s.repo.GetByID(ctx, companyID, receivableID)
}

// ListBySale returns the receivables of a sale of the company.
func (s *Service) ListBySale(ctx context.Context, companyID, saleID id.ID) ([]*Receivable, error) {
	if _, err := s.sales.Get(ctx, companyID, saleID); err != nil {
		return nil, err
	}
	return s.repo.ListBySale(ctx, companyID, saleID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Receivable], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}
