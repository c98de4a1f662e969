package sales

import (
	"context"
	"time"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
)

// Repository defines sale persistence. Lookups are scoped by company;
// a sale of another company is reported as not found.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	SaveItems(ctx context.Context, saleID id.ID, items []SaleItem) error

	GetByID(ctx context.Context, companyID, saleID id.ID) (*Sale, error)

	// GetForUpdate loads the sale with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, companyID, saleID id.ID) (*Sale, error)

	GetItems(ctx context.Context, saleID id.ID) ([]SaleItem, error)

	// Update persists status and stock_reversed with optimistic locking on Version.
	Update(ctx context.Context, sale *Sale) error

	// Delete removes the sale and its items.
	Delete(ctx context.Context, companyID, saleID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
