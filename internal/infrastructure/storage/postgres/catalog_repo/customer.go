package catalog_repo

import (
	"context"

	"tudogestao/internal/domain"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/infrastructure/storage/postgres"
)

var _ customers.Repository = (*CustomerRepo)(nil)

// CustomerRepo implements customers.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customers.Customer]
}

func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	base := NewBaseCatalogRepo(
		txManager,
		"customers",
		customers.EntityName,
		postgres.Columns[customers.Customer](),
		func() *customers.Customer { return &customers.Customer{} },
	)
	base.searchCols = []string{"name", "document", "email"}
	return &CustomerRepo{BaseCatalogRepo: base}
}

func (r *CustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customers.Customer], error) {
	return r.BaseCatalogRepo.List(ctx, filter)
}
