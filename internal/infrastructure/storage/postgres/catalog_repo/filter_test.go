package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/infrastructure/storage/postgres"
)

func testRepo() *BaseCatalogRepo[*products.Product] {
	return NewBaseCatalogRepo(nil, "test_table", "Test", []string{"id", "company_id", "name", "version"},
		func() *products.Product { return &products.Product{} })
}

func TestListQuery_ScopesByCompany(t *testing.T) {
	company := id.New()
	sql, args, err := testRepo().listQuery(domain.ListFilter{CompanyID: company}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, company_id, name, version FROM test_table WHERE company_id = $1", sql)
	assert.Equal(t, []any{company}, args)
}

func TestListQuery_SearchAndExtra(t *testing.T) {
	repo := testRepo()
	repo.searchCols = []string{"name", "code"}
	company := id.New()

	q := repo.listQuery(domain.ListFilter{CompanyID: company, Search: "cafe"}, squirrel.Eq{"active": true})
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, company_id, name, version FROM test_table WHERE company_id = $1 AND (name ILIKE $2 OR code ILIKE $3) AND active = $4",
		sql)
	assert.Equal(t, []any{company, "%cafe%", "%cafe%", true}, args)
}

func TestUpdateQuery_VersionGuard(t *testing.T) {
	repo := NewBaseCatalogRepo(nil, productTable, products.EntityName,
		[]string{"id", "company_id", "version", "name", "stock"},
		func() *products.Product { return &products.Product{} })

	p := products.NewProduct(id.New(), "P1", "Cafe")
	p.Version = 3

	sql, args, err := repo.updateQuery(p, "stock")
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE products SET name = $1, version = version + 1, updated_at = NOW() WHERE company_id = $2 AND id = $3 AND version = $4 RETURNING version, updated_at",
		sql)
	assert.Equal(t, []any{"Cafe", p.CompanyID, p.ID, 3}, args)
}

func TestInsertQuery_UsesSelectedColumns(t *testing.T) {
	repo := NewBaseCatalogRepo(nil, productTable, products.EntityName,
		postgres.Columns[products.Product](),
		func() *products.Product { return &products.Product{} })

	sql, args, err := repo.insertQuery(products.NewProduct(id.New(), "P1", "Cafe"))
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO products")
	assert.Contains(t, sql, "min_stock")
	assert.Len(t, args, len(postgres.Columns[products.Product]()))
}

func TestStockQueries(t *testing.T) {
	company, product := id.New(), id.New()

	sql, args, err := decrementQuery(company, product, 4)
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE company_id = $2 AND id = $3 AND stock >= $4 RETURNING stock",
		sql)
	assert.Equal(t, []any{4, company, product, 4}, args)

	sql, args, err = adjustQuery(company, product, -2)
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE company_id = $2 AND id = $3 AND stock + $4 >= 0 RETURNING stock",
		sql)
	assert.Equal(t, []any{-2, company, product, -2}, args)
}
