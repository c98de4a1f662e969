package postgres

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"tudogestao/internal/core/apperror"
)

// Builder returns a squirrel statement builder with PostgreSQL placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func psql() sq.StatementBuilderType { return Builder() }

// PostgreSQL error codes handled by the repositories.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// MapWriteError converts constraint failures into AppErrors.
// Other errors are returned unchanged.
func MapWriteError(err error, entity string) error {
	code, constraint := pgCode(err)
	switch code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, constraint, "").WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewInvalidState(entity+" references a missing or used row").
			WithDetail("constraint", constraint).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation(entity+" violates "+constraint).WithCause(err)
	}
	return err
}

// OrderBy turns "-col" into "col DESC" after checking col against allowed.
// Unknown or empty columns fall back to def.
func OrderBy(orderBy string, allowed []string, def string) string {
	field, dir := strings.TrimSpace(orderBy), "ASC"
	if strings.HasPrefix(field, "-") {
		field, dir = field[1:], "DESC"
	}
	for _, col := range allowed {
		if col == field {
			return field + " " + dir
		}
	}
	return def
}
