package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
)

func TestCustomerValidate(t *testing.T) {
	ctx := context.Background()

	c := NewCustomer(id.New(), "Maria Souza")
	c.Document = "123.456.789-01"
	c.Email = "maria@example.com"
	require.NoError(t, c.Validate(ctx))
	assert.Equal(t, "12345678901", c.Document)

	c.Document = "12.345.678/0001-90"
	require.NoError(t, c.Validate(ctx))
	assert.Equal(t, "12345678000190", c.Document)

	c.Document = "123"
	err := c.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	c.Document = ""
	c.Email = "not-an-email"
	assert.Error(t, c.Validate(ctx))

	assert.Error(t, NewCustomer(id.New(), "  ").Validate(ctx))
	assert.Error(t, NewCustomer(id.Nil(), "Maria").Validate(ctx))
}
