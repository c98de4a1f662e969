// Package receivables provides accounts receivable and their reconciliation with sales.
package receivables

import (
	"context"
	"strings"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain"
)

const EntityName = "AccountReceivable"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Receivable is an amount owed to the company, optionally linked to a sale.
type Receivable struct {
	entity.BaseEntity

	SaleID     *id.ID `db:"sale_id" json:"saleId,omitempty"`
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	Description string      `db:"description" json:"description"`
	Amount      types.Money `db:"amount" json:"amount"`
	DueDate     time.Time   `db:"due_date" json:"dueDate"`

	// InstallmentNo is 1-based for generated installments, 0 for standalone receivables
	InstallmentNo int `db:"installment_no" json:"installmentNo"`

	Status Status     `db:"status" json:"status"`
	PaidAt *time.Time `db:"paid_at" json:"paidAt,omitempty"`
}

func NewReceivable(companyID id.ID, description string, amount types.Money, dueDate time.Time) *Receivable {
	return &Receivable{
		BaseEntity:  entity.NewBaseEntity(companyID),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		DueDate:     dueDate,
		Status:      StatusPending,
	}
}

// Validate implements entity.Validatable.
func (r *Receivable) Validate(ctx context.Context) error {
	if err := r.ValidateScope(); err != nil {
		return err
	}
	if r.Description == "" {
		return apperror.NewValidation("description is required").WithDetail("field", "description")
	}
	if !r.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").WithDetail("field", "amount")
	}
	if r.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").WithDetail("field", "dueDate")
	}
	if !r.Status.Valid() {
		return apperror.NewValidation("invalid status").WithDetail("field", "status")
	}
	return nil
}

func (r *Receivable) IsPaid() bool {
	return r.Status == StatusPaid
}

// Repository defines receivable persistence, scoped by company.
type Repository interface {
	Create(ctx context.Context, r *Receivable) error
	GetByID(ctx context.Context, companyID, receivableID id.ID) (*Receivable, error)

	// GetForUpdate loads the receivable with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, companyID, receivableID id.ID) (*Receivable, error)

	// Update persists status and paid_at with optimistic locking on Version.
	Update(ctx context.Context, r *Receivable) error

	// ListBySale returns the receivables of a sale ordered by installment.
	ListBySale(ctx context.Context, companyID, saleID id.ID) ([]*Receivable, error)

	DeleteBySale(ctx context.Context, companyID, saleID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Receivable], error)
}

// ListFilter for filtering receivables.
type ListFilter struct {
	domain.ListFilter

	SaleID    *id.ID
	Status    *Status
	DueBefore *time.Time
}
