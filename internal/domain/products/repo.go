package products

import (
	"context"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
)

// Repository defines product persistence. Every lookup is scoped by company;
// a product of another company is reported as not found.
//
// Stock is only changed through the conditional methods below, never by Update.
type Repository interface {
	Create(ctx context.Context, p *Product) error

	GetByID(ctx context.Context, companyID, productID id.ID) (*Product, error)

	// GetByCode returns NotFound when no product has the code.
	GetByCode(ctx context.Context, companyID id.ID, code string) (*Product, error)

	// Update modifies catalog fields with optimistic locking on Version.
	Update(ctx context.Context, p *Product) error

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// FindLowStock lists products with stock <= min_stock.
	FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// DecrementStock subtracts qty only while stock >= qty.
	// It returns false when the guard fails or the product does not exist.
	DecrementStock(ctx context.Context, companyID, productID id.ID, qty int) (bool, error)

	// IncrementStock adds qty. It returns false when the product does not exist.
	IncrementStock(ctx context.Context, companyID, productID id.ID, qty int) (bool, error)

	// AdjustStock applies delta only while stock + delta >= 0 and returns the new stock.
	// ok is false when the guard fails or the product does not exist.
	AdjustStock(ctx context.Context, companyID, productID id.ID, delta int) (newStock int, ok bool, err error)
}
