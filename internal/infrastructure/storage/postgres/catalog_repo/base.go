// Package catalog_repo provides PostgreSQL repositories for catalog entities
// (products, customers). Every query is scoped by company_id.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides company scoped CRUD for a catalog table.
// T is a pointer to the entity struct.
type BaseCatalogRepo[T any] struct {
	txManager    *postgres.TxManager
	tableName    string
	entityName   string
	selectCols   []string
	searchCols   []string
	orderCols    []string
	defaultOrder string
	newFn        func() T
}

func NewBaseCatalogRepo[T any](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:    txManager,
		tableName:    tableName,
		entityName:   entityName,
		selectCols:   selectCols,
		searchCols:   []string{"name"},
		orderCols:    []string{"name", "created_at", "updated_at"},
		defaultOrder: "name ASC",
		newFn:        newFn,
	}
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *BaseCatalogRepo[T]) baseSelect(companyID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"company_id": companyID})
}

func (r *BaseCatalogRepo[T]) insertQuery(entity T) (string, []any, error) {
	data := postgres.StructToMap(entity)
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("no db columns in %T", entity)
	}
	return postgres.Builder().Insert(r.tableName).SetMap(values).ToSql()
}

// Create inserts the entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	sql, args, err := r.insertQuery(entity)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapWriteError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

// updateQuery sets every column except the immutable ones and those in skip,
// guarded by the expected version.
func (r *BaseCatalogRepo[T]) updateQuery(entity T, skip ...string) (string, []any, error) {
	data := postgres.StructToMap(entity)
	version, ok := data["version"].(int)
	if !ok {
		return "", nil, fmt.Errorf("%T has no int version", entity)
	}

	immutable := map[string]bool{"id": true, "company_id": true, "version": true, "created_at": true, "updated_at": true}
	for _, col := range skip {
		immutable[col] = true
	}

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if immutable[col] {
			continue
		}
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	return postgres.Builder().
		Update(r.tableName).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": data["id"], "company_id": data["company_id"], "version": version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
}

// Update modifies the entity with optimistic locking. On success the new
// version and updated_at are written back through dst.
func (r *BaseCatalogRepo[T]) update(ctx context.Context, entity T, version *int, updatedAt any, entityID id.ID, skip ...string) error {
	sql, args, err := r.updateQuery(entity, skip...)
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

// GetByID retrieves an entity of the company.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, companyID, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect(companyID).Where(squirrel.Eq{"id": entityID}), entityID)
}

// FindOne runs q and scans a single row. notFoundKey is reported when no row matches.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, notFoundKey any) (T, error) {
	entity := r.newFn()

	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		var zero T
		if pgxscan.NotFound(err) {
			return zero, apperror.NewNotFound(r.entityName, notFoundKey)
		}
		return zero, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// listQuery applies company scope, search, ids and extra conditions.
func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter, extra ...squirrel.Sqlizer) squirrel.SelectBuilder {
	q := r.baseSelect(filter.CompanyID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		or := squirrel.Or{}
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	for _, cond := range extra {
		q = q.Where(cond)
	}
	return q
}

// List returns a page of entities and the total count.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter, extra ...squirrel.Sqlizer) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset, Items: []T{}}
	q := r.listQuery(filter, extra...)

	countSQL, countArgs, err := postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	q = q.OrderBy(postgres.OrderBy(filter.OrderBy, r.orderCols, r.defaultOrder), "id ASC")
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
