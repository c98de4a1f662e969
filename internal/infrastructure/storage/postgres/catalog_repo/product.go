package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/infrastructure/storage/postgres"
)

const productTable = "products"

var _ products.Repository = (*ProductRepo)(nil)

// ProductRepo implements products.Repository.
// Stock changes are single conditional UPDATE statements, so concurrent
// sales of the same product cannot oversell it.
type ProductRepo struct {
	*BaseCatalogRepo[*products.Product]
}

func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	base := NewBaseCatalogRepo(
		txManager,
		productTable,
		products.EntityName,
		postgres.Columns[products.Product](),
		func() *products.Product { return &products.Product{} },
	)
	base.searchCols = []string{"name", "code", "barcode"}
	base.orderCols = []string{"code", "name", "stock", "sale_price", "created_at"}
	base.defaultOrder = "code ASC"
	return &ProductRepo{BaseCatalogRepo: base}
}

func (r *ProductRepo) GetByCode(ctx context.Context, companyID id.ID, code string) (*products.Product, error) {
	return r.FindOne(ctx, r.baseSelect(companyID).Where(squirrel.Eq{"code": code}), code)
}

// Update writes catalog fields only; stock is left to the conditional methods.
func (r *ProductRepo) Update(ctx context.Context, p *products.Product) error {
	return r.update(ctx, p, &p.Version, &p.UpdatedAt, p.ID, "stock")
}

func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*products.Product], error) {
	return r.BaseCatalogRepo.List(ctx, filter)
}

func (r *ProductRepo) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*products.Product], error) {
	return r.BaseCatalogRepo.List(ctx, filter,
		squirrel.Eq{"active": true},
		squirrel.Expr("stock <= min_stock"),
	)
}

// decrementQuery subtracts qty only while enough stock remains.
func decrementQuery(companyID, productID id.ID, qty int) (string, []any, error) {
	return postgres.Builder().
		Update(productTable).
		Set("stock", squirrel.Expr("stock - ?", qty)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"company_id": companyID, "id": productID}).
		Where(squirrel.GtOrEq{"stock": qty}).
		Suffix("RETURNING stock").
		ToSql()
}

// adjustQuery adds delta (of either sign) only while the result stays non-negative.
func adjustQuery(companyID, productID id.ID, delta int) (string, []any, error) {
	return postgres.Builder().
		Update(productTable).
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"company_id": companyID, "id": productID}).
		Where(squirrel.Expr("stock + ? >= 0", delta)).
		Suffix("RETURNING stock").
		ToSql()
}

func (r *ProductRepo) DecrementStock(ctx context.Context, companyID, productID id.ID, qty int) (bool, error) {
	sql, args, err := decrementQuery(companyID, productID, qty)
	if err != nil {
		return false, fmt.Errorf("build decrement: %w", err)
	}
	_, ok, err := r.scanStock(ctx, sql, args)
	return ok, err
}

func (r *ProductRepo) IncrementStock(ctx context.Context, companyID, productID id.ID, qty int) (bool, error) {
	_, ok, err := r.AdjustStock(ctx, companyID, productID, qty)
	return ok, err
}

func (r *ProductRepo) AdjustStock(ctx context.Context, companyID, productID id.ID, delta int) (int, bool, error) {
	sql, args, err := adjustQuery(companyID, productID, delta)
	if err != nil {
		return 0, false, fmt.Errorf("build adjust: %w", err)
	}
	return r.scanStock(ctx, sql, args)
}

// scanStock runs a conditional stock update. No returned row means the
// guard failed or the product is not in the company.
func (r *ProductRepo) scanStock(ctx context.Context, sql string, args []any) (int, bool, error) {
	var stock int
	err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, postgres.MapWriteError(fmt.Errorf("update stock: %w", err), products.EntityName)
	}
	return stock, true, nil
}
