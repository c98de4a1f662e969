// Package domain provides types shared by the domain services.
package domain

import (
	"context"
	"strings"

	"tudogestao/internal/core/id"
)

// --- Filter & Pagination ---

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// CompanyID scopes the listing; always required
	CompanyID id.ID

	// Search matches name/code/number fields (case-insensitive)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	Limit  int
	Offset int
}

// Normalize clamps paging values.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// OrderColumn splits OrderBy into column and direction ("-x" means DESC).
// Unknown columns fall back to def.
func (f ListFilter) OrderColumn(allowed map[string]bool, def string) (string, bool) {
	col, desc := f.OrderBy, false
	if strings.HasPrefix(col, "-") {
		col, desc = col[1:], true
	}
	if !allowed[col] {
		return def, desc
	}
	return col, desc
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

// Hooks for these events run inside the operation's transaction;
// an error from a hook rolls the operation back.
const (
	AfterCreate       HookEvent = "after_create"
	AfterCancel       HookEvent = "after_cancel"
	BeforeDelete      HookEvent = "before_delete"
	AfterStatusChange HookEvent = "after_status_change"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
// Register hooks during wiring, before the service handles requests.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}
