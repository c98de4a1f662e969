package middleware

import (
	"github.com/gin-gonic/gin"

	"tudogestao/internal/core/apperror"
	appctx "tudogestao/internal/core/context"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/tenant"
)

// CompanyHeader lets a client state the company it works on. It must match the token.
const CompanyHeader = "X-Company-ID"

// Tenant puts the company of the authenticated user into the request context.
// It must run after Auth.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		companyID, err := id.Parse(user.CompanyID)
		if err != nil || id.IsNil(companyID) {
			abortUnauthorized(c, "token has no valid company")
			return
		}

		if header := c.GetHeader(CompanyHeader); header != "" && header != companyID.String() {
			_ = c.Error(
				apperror.NewForbidden("company mismatch").
					WithDetail("header_company_id", header).
					WithDetail("token_company_id", companyID.String()),
			)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(tenant.WithCompanyID(c.Request.Context(), companyID))
		c.Set("company_id", companyID)

		c.Next()
	}
}
