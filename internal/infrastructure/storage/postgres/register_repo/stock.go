// Package register_repo provides the PostgreSQL stock journal.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain/registers/stock"
	"tudogestao/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "stock_movements"

var movementColumns = []string{
	"line_id", "company_id", "recorder_id", "recorder_type", "record_type",
	"product_id", "quantity", "reason", "created_at",
}

var _ stock.Repository = (*StockRepo)(nil)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
}

func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
	}
}

func movementRow(m entity.StockMovement) []any {
	return []any{
		m.LineID, m.CompanyID, m.RecorderID, m.RecorderType, m.RecordType,
		m.ProductID, m.Quantity, m.Reason, m.CreatedAt,
	}
}

// CreateMovements uses COPY inside a transaction and a multi-row INSERT otherwise.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	if r.txManager.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementRow(m))
		}
		if _, err := r.inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := postgres.Builder().Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(movementRow(m)...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func historyQuery(companyID, productID id.ID, filter stock.MovementFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"company_id": companyID, "product_id": productID})

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}
	q = q.OrderBy("created_at DESC", "line_id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *StockRepo) GetMovementHistory(ctx context.Context, companyID, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return r.selectMovements(ctx, historyQuery(companyID, productID, filter))
}

func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, companyID, recorderID id.ID) ([]entity.StockMovement, error) {
	return r.selectMovements(ctx, postgres.Builder().
		Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"company_id": companyID, "recorder_id": recorderID}).
		OrderBy("created_at", "line_id"))
}

func (r *StockRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]entity.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	movements := []entity.StockMovement{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	return movements, nil
}
