// Package document_repo provides PostgreSQL repositories for sales and
// receivables. Every query is scoped by company_id.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo provides common operations for document tables.
type BaseDocumentRepo[T any] struct {
	txManager    *postgres.TxManager
	tableName    string
	entityName   string
	selectCols   []string
	orderCols    []string
	defaultOrder string
	newFn        func() T
}

func NewBaseDocumentRepo[T any](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txManager:    txManager,
		tableName:    tableName,
		entityName:   entityName,
		selectCols:   selectCols,
		orderCols:    []string{"created_at", "updated_at"},
		defaultOrder: "created_at DESC",
		newFn:        newFn,
	}
}

func (r *BaseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *BaseDocumentRepo[T]) baseSelect(companyID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"company_id": companyID})
}

// Create inserts a new document.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	sql, args, err := postgres.Builder().Insert(r.tableName).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapWriteError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

// updateQuery sets the given columns guarded by the expected version.
func (r *BaseDocumentRepo[T]) updateQuery(companyID, entityID id.ID, version int, values map[string]any) (string, []any, error) {
	return postgres.Builder().
		Update(r.tableName).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"company_id": companyID, "id": entityID, "version": version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
}

// updateFields writes values with optimistic locking and stores the new
// version and updated_at through the pointers.
func (r *BaseDocumentRepo[T]) updateFields(
	ctx context.Context,
	companyID, entityID id.ID,
	version *int, updatedAt *time.Time,
	values map[string]any,
) error {
	sql, args, err := r.updateQuery(companyID, entityID, *version, values)
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(version, updatedAt)
	if pgxscan.NotFound(err) {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}
	if err != nil {
		return postgres.MapWriteError(fmt.Errorf("update %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

// GetByID retrieves a document of the company.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, companyID, entityID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect(companyID).Where(squirrel.Eq{"id": entityID}), entityID)
}

// GetForUpdate retrieves a document with a row lock.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, companyID, entityID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect(companyID).Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"), entityID)
}

func (r *BaseDocumentRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, entityID id.ID) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		var zero T
		if pgxscan.NotFound(err) {
			return zero, apperror.NewNotFound(r.entityName, entityID)
		}
		return zero, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// list runs q with a total count, ordering and paging.
func (r *BaseDocumentRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset, Items: []T{}}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	countSQL, countArgs, err := postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	q = q.OrderBy(postgres.OrderBy(filter.OrderBy, r.orderCols, r.defaultOrder), "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}
