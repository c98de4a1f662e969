package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/sales"
	"tudogestao/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

var saleItemColumns = []string{
	"id", "sale_id", "line_no", "product_id", "quantity", "unit_price", "discount", "total",
}

var _ sales.Repository = (*SaleRepo)(nil)

// SaleRepo implements sales.Repository. Items live in sale_items.
type SaleRepo struct {
	*BaseDocumentRepo[*sales.Sale]
	inserter *postgres.BatchInserter
	executor *postgres.BatchExecutor
}

func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	base := NewBaseDocumentRepo(
		txManager,
		salesTable,
		sales.EntityName,
		postgres.Columns[sales.Sale](),
		func() *sales.Sale { return &sales.Sale{} },
	)
	base.orderCols = []string{"date", "number", "net_amount", "status", "created_at"}
	base.defaultOrder = "date DESC"
	return &SaleRepo{
		BaseDocumentRepo: base,
		inserter:         postgres.NewBatchInserter(txManager),
		executor:         postgres.NewBatchExecutor(txManager),
	}
}

// SaveItems replaces the items of a sale.
func (r *SaleRepo) SaveItems(ctx context.Context, saleID id.ID, items []sales.SaleItem) error {
	sql, args, err := postgres.Builder().
		Delete(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.ID, saleID, it.LineNo, it.ProductID, it.Quantity, it.UnitPrice, it.Discount, it.Total,
		})
	}
	if _, err := r.inserter.CopyFromSlice(ctx, saleItemsTable, saleItemColumns, rows); err != nil {
		return postgres.MapWriteError(fmt.Errorf("copy sale items: %w", err), sales.EntityName)
	}
	return nil
}

func (r *SaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]sales.SaleItem, error) {
	sql, args, err := postgres.Builder().
		Select(saleItemColumns...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	items := []sales.SaleItem{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	return items, nil
}

// Update persists the lifecycle fields.
func (r *SaleRepo) Update(ctx context.Context, sale *sales.Sale) error {
	return r.updateFields(ctx, sale.CompanyID, sale.ID, &sale.Version, &sale.UpdatedAt, map[string]any{
		"status":         sale.Status,
		"stock_reversed": sale.StockReversed,
	})
}

// deleteQueries removes the items first, then the sale.
func deleteQueries(companyID, saleID id.ID) ([]postgres.BatchQuery, error) {
	itemsSQL, itemsArgs, err := postgres.Builder().
		Delete(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	saleSQL, saleArgs, err := postgres.Builder().
		Delete(salesTable).
		Where(squirrel.Eq{"company_id": companyID, "id": saleID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return []postgres.BatchQuery{
		{SQL: itemsSQL, Args: itemsArgs},
		{SQL: saleSQL, Args: saleArgs},
	}, nil
}

func (r *SaleRepo) Delete(ctx context.Context, companyID, saleID id.ID) error {
	queries, err := deleteQueries(companyID, saleID)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	affected, err := r.executor.ExecuteBatch(ctx, queries)
	if err != nil {
		return postgres.MapWriteError(fmt.Errorf("delete sale: %w", err), sales.EntityName)
	}
	if affected[len(affected)-1] == 0 {
		return apperror.NewNotFound(sales.EntityName, saleID)
	}
	return nil
}

// listQuery applies the sale filters on top of the company scope.
func (r *SaleRepo) listQuery(filter sales.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect(filter.CompanyID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"notes": pattern},
		})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	return q
}

func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.Sale], error) {
	return r.list(ctx, r.listQuery(filter), filter.ListFilter)
}
