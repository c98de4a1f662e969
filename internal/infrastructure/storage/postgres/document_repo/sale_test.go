package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/sales"
)

func TestSaleListQuery_Filters(t *testing.T) {
	repo := NewSaleRepo(nil)
	company, customer := id.New(), id.New()
	status := sales.StatusPending
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.listQuery(sales.ListFilter{
		ListFilter: domain.ListFilter{CompanyID: company},
		CustomerID: &customer,
		Status:     &status,
		DateFrom:   &from,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM sales WHERE company_id = $1 AND customer_id = $2 AND status = $3 AND date >= $4")
	assert.Equal(t, []any{company, customer, status, from}, args)
}

func TestSaleDeleteQueries_ItemsFirst(t *testing.T) {
	company, sale := id.New(), id.New()

	queries, err := deleteQueries(company, sale)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "DELETE FROM sale_items WHERE sale_id = $1", queries[0].SQL)
	assert.Equal(t, []any{sale}, queries[0].Args)
	assert.Equal(t, "DELETE FROM sales WHERE company_id = $1 AND id = $2", queries[1].SQL)
	assert.Equal(t, []any{company, sale}, queries[1].Args)
}

func TestUpdateQuery_VersionGuard(t *testing.T) {
	repo := NewSaleRepo(nil)
	company, sale := id.New(), id.New()

	sql, args, err := repo.updateQuery(company, sale, 2, map[string]any{
		"status":         sales.StatusCancelled,
		"stock_reversed": true,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE sales SET status = $1, stock_reversed = $2, version = version + 1, updated_at = NOW() "+
			"WHERE company_id = $3 AND id = $4 AND version = $5 RETURNING version, updated_at",
		sql)
	assert.Equal(t, []any{sales.StatusCancelled, true, company, sale, 2}, args)
}

func TestReceivableListQuery_DueBefore(t *testing.T) {
	repo := NewReceivableRepo(nil)
	company := id.New()
	status := receivables.StatusPending
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.listQuery(receivables.ListFilter{
		ListFilter: domain.ListFilter{CompanyID: company},
		Status:     &status,
		DueBefore:  &due,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM accounts_receivable WHERE company_id = $1 AND status = $2 AND due_date < $3")
	assert.Equal(t, []any{company, status, due}, args)
}
