// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain"
)

// ListQuery holds the common list parameters.
type ListQuery struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter builds a normalized domain filter scoped to companyID.
func (q ListQuery) Filter(companyID id.ID) domain.ListFilter {
	return domain.ListFilter{
		CompanyID: companyID,
		Search:    q.Search,
		OrderBy:   q.OrderBy,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}.Normalize()
}

// ListResponse wraps list results with paging metadata.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps the items of a domain result.
func NewListResponse[E, T any](res domain.ListResult[E], mapFn func(E) T) ListResponse[T] {
	items := make([]T, 0, len(res.Items))
	for _, e := range res.Items {
		items = append(items, mapFn(e))
	}
	return ListResponse[T]{Items: items, TotalCount: res.TotalCount, Limit: res.Limit, Offset: res.Offset}
}

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromBase(b entity.BaseEntity) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

// money renders an amount with two decimals.
func money(m types.Money) string {
	return m.StringFixed(2)
}

// optionalID parses an optional id field; empty means absent.
func optionalID(raw, field string) (*id.ID, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := id.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid id format").WithDetail("field", field)
	}
	return &v, nil
}

func idString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
