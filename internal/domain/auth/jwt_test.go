package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "tudogestao/internal/core/context"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expires, err := svc.GenerateAccessToken(appctx.UserContext{
		UserID:      "u1",
		CompanyID:   "0192a0b4-7c1e-7000-8000-000000000001",
		Email:       "caixa@loja.com.br",
		Permissions: []string{"sales:create"},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, "0192a0b4-7c1e-7000-8000-000000000001", user.CompanyID)
	assert.Equal(t, []string{"sales:create"}, user.Permissions)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(DefaultJWTConfig("other"))
		token, _, err := other.GenerateAccessToken(appctx.UserContext{UserID: "u1", CompanyID: "c1"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		cfg := DefaultJWTConfig("secret")
		cfg.AccessTokenTTL = -time.Minute
		token, _, err := NewJWTService(cfg).GenerateAccessToken(appctx.UserContext{UserID: "u1", CompanyID: "c1"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("no company", func(t *testing.T) {
		token, _, err := svc.GenerateAccessToken(appctx.UserContext{UserID: "u1"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
