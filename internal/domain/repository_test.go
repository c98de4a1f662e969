package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFilterNormalize(t *testing.T) {
	f := ListFilter{Limit: 0, Offset: -3, Search: "  arroz "}.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, "arroz", f.Search)

	assert.Equal(t, MaxLimit, ListFilter{Limit: 10_000}.Normalize().Limit)
}

func TestListFilterOrderColumn(t *testing.T) {
	allowed := map[string]bool{"name": true, "created_at": true}

	col, desc := ListFilter{OrderBy: "-created_at"}.OrderColumn(allowed, "name")
	assert.Equal(t, "created_at", col)
	assert.True(t, desc)

	col, desc = ListFilter{OrderBy: "password"}.OrderColumn(allowed, "name")
	assert.Equal(t, "name", col)
	assert.False(t, desc)
}

func TestHookRegistryStopsAtFirstError(t *testing.T) {
	r := NewHookRegistry[*int]()
	calls := 0
	boom := errors.New("boom")

	r.OnAfterCreate(func(ctx context.Context, v *int) error { calls++; return nil })
	r.OnAfterCreate(func(ctx context.Context, v *int) error { calls++; return boom })
	r.OnAfterCreate(func(ctx context.Context, v *int) error { calls++; return nil })

	n := 1
	err := r.Run(context.Background(), AfterCreate, &n)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	assert.NoError(t, r.Run(context.Background(), BeforeDelete, &n))
}
