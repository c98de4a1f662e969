package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest},
		{"not found", NewNotFound("sale", "x"), http.StatusNotFound},
		{"insufficient stock", NewInsufficientStock("p1", 5, 2), http.StatusBadRequest},
		{"invalid adjustment", NewInvalidAdjustment("p1", 2, -5), http.StatusBadRequest},
		{"invalid state", NewInvalidState("cannot delete a paid sale"), http.StatusConflict},
		{"already cancelled", NewAlreadyCancelled("sale", "x"), http.StatusConflict},
		{"internal", NewInternal(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestAlreadyCancelledIsInvalidState(t *testing.T) {
	err := fmt.Errorf("cancel: %w", NewAlreadyCancelled("sale", "x"))

	assert.True(t, IsInvalidState(err))
	assert.True(t, IsAlreadyCancelled(err))
	assert.False(t, IsAlreadyCancelled(NewInvalidState("nope")))
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("p1", 20, 10)

	require.True(t, IsInsufficientStock(err))
	assert.Equal(t, "p1", err.Details["product_id"])
	assert.Equal(t, 20, err.Details["requested"])
	assert.Equal(t, 10, err.Details["available"])
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
