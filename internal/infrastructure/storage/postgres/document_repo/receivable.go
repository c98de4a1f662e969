package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/infrastructure/storage/postgres"
)

const receivablesTable = "accounts_receivable"

var _ receivables.Repository = (*ReceivableRepo)(nil)

// ReceivableRepo implements receivables.Repository.
type ReceivableRepo struct {
	*BaseDocumentRepo[*receivables.Receivable]
}

func NewReceivableRepo(txManager *postgres.TxManager) *ReceivableRepo {
	base := NewBaseDocumentRepo(
		txManager,
		receivablesTable,
		receivables.EntityName,
		postgres.Columns[receivables.Receivable](),
		func() *receivables.Receivable { return &receivables.Receivable{} },
	)
	base.orderCols = []string{"due_date", "amount", "status", "created_at"}
	base.defaultOrder = "due_date ASC"
	return &ReceivableRepo{BaseDocumentRepo: base}
}

func (r *ReceivableRepo) Update(ctx context.Context, rec *receivables.Receivable) error {
	return r.updateFields(ctx, rec.CompanyID, rec.ID, &rec.Version, &rec.UpdatedAt, map[string]any{
		"status":  rec.Status,
		"paid_at": rec.PaidAt,
	})
}

func (r *ReceivableRepo) ListBySale(ctx context.Context, companyID, saleID id.ID) ([]*receivables.Receivable, error) {
	sql, args, err := r.baseSelect(companyID).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("installment_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []*receivables.Receivable{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list receivables by sale: %w", err)
	}
	return items, nil
}

func (r *ReceivableRepo) DeleteBySale(ctx context.Context, companyID, saleID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(receivablesTable).
		Where(squirrel.Eq{"company_id": companyID, "sale_id": saleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete receivables: %w", err)
	}
	return nil
}

func (r *ReceivableRepo) listQuery(filter receivables.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect(filter.CompanyID)

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + filter.Search + "%"})
	}
	if filter.SaleID != nil {
		q = q.Where(squirrel.Eq{"sale_id": *filter.SaleID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DueBefore != nil {
		q = q.Where(squirrel.Lt{"due_date": *filter.DueBefore})
	}
	return q
}

func (r *ReceivableRepo) List(ctx context.Context, filter receivables.ListFilter) (domain.ListResult[*receivables.Receivable], error) {
	return r.list(ctx, r.listQuery(filter), filter.ListFilter)
}
