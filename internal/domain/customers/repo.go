package customers

import (
	"context"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
)

// Repository defines customer persistence, scoped by company.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, companyID, customerID id.ID) (*Customer, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error)
}
