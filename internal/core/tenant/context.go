// Package tenant carries the company scope of a request.
// All companies share one database; every row is scoped by company_id.
package tenant

import (
	"context"
	"errors"

	"tudogestao/internal/core/id"
)

type ctxKey struct{}

// ErrNoCompanyInContext is returned when a request reaches the domain without a company scope.
var ErrNoCompanyInContext = errors.New("company not found in context")

// WithCompanyID stores the active company in context.
func WithCompanyID(ctx context.Context, companyID id.ID) context.Context {
	return context.WithValue(ctx, ctxKey{}, companyID)
}

// CompanyID returns the active company.
func CompanyID(ctx context.Context) (id.ID, error) {
	v, ok := ctx.Value(ctxKey{}).(id.ID)
	if !ok || id.IsNil(v) {
		return id.Nil(), ErrNoCompanyInContext
	}
	return v, nil
}

// CompanyIDString returns the active company as a string, or "" when absent.
func CompanyIDString(ctx context.Context) string {
	v, err := CompanyID(ctx)
	if err != nil {
		return ""
	}
	return v.String()
}
