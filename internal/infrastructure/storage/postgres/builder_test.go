package postgres

import (
	"errors"
	"fmt"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/apperror"
)

func TestBuilder_DollarPlaceholders(t *testing.T) {
	sql, args, err := Builder().
		Update("products").
		Set("stock", sq.Expr("stock - ?", 3)).
		Where(sq.Eq{"company_id": "c", "id": "p"}).
		Where(sq.GtOrEq{"stock": 3}).
		Suffix("RETURNING stock").
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE products SET stock = stock - $1 WHERE company_id = $2 AND id = $3 AND stock >= $4 RETURNING stock", sql)
	assert.Equal(t, []any{3, "c", "p", 3}, args)
}

func TestOrderBy(t *testing.T) {
	allowed := []string{"code", "name"}
	assert.Equal(t, "name ASC", OrderBy("name", allowed, "code ASC"))
	assert.Equal(t, "code DESC", OrderBy("-code", allowed, "name ASC"))
	assert.Equal(t, "code ASC", OrderBy("password; --", allowed, "code ASC"))
	assert.Equal(t, "code ASC", OrderBy("", allowed, "code ASC"))
}

func TestMapWriteError(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "products_company_code_key"})
	err := MapWriteError(unique, "Product")
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	check := &pgconn.PgError{Code: "23514", ConstraintName: "products_stock_check"}
	assert.True(t, apperror.HasCode(MapWriteError(check, "Product"), apperror.CodeValidation))

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, apperror.IsInvalidState(MapWriteError(fk, "Sale")))

	plain := errors.New("connection reset")
	assert.Same(t, plain, MapWriteError(plain, "Sale"))
}
