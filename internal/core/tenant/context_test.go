package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/id"
)

func TestCompanyID(t *testing.T) {
	_, err := CompanyID(context.Background())
	assert.ErrorIs(t, err, ErrNoCompanyInContext)
	assert.Empty(t, CompanyIDString(context.Background()))

	companyID := id.New()
	ctx := WithCompanyID(context.Background(), companyID)

	got, err := CompanyID(ctx)
	require.NoError(t, err)
	assert.Equal(t, companyID, got)
	assert.Equal(t, companyID.String(), CompanyIDString(ctx))

	_, err = CompanyID(WithCompanyID(context.Background(), id.Nil()))
	assert.ErrorIs(t, err, ErrNoCompanyInContext)
}
