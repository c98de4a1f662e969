package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	ctx := WithUser(context.Background(), &UserContext{
		UserID:      "u1",
		Permissions: []string{"sales:read"},
		Roles:       []string{"cashier"},
	})

	assert.True(t, HasPermission(ctx, "sales:read"))
	assert.False(t, HasPermission(ctx, "sales:delete"))
	assert.Equal(t, "u1", GetUserID(ctx))

	admin := WithUser(context.Background(), &UserContext{IsAdmin: true})
	assert.True(t, HasPermission(admin, "sales:delete"))

	assert.False(t, HasPermission(context.Background(), "sales:read"))
}
