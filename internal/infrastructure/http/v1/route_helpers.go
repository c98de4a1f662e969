package v1

import (
	"github.com/gin-gonic/gin"

	"tudogestao/internal/infrastructure/http/v1/middleware"
)

// ResourceRouteHandler defines the create/list/get trio every resource has.
type ResourceRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
}

// RegisterResourceRoutes registers the standard routes of a resource.
// Resource specific routes are added by the caller on the same group.
//
// Usage:
//
//	handler := handlers.NewCustomerHandler(base, services.Customers)
//	RegisterResourceRoutes(api.Group("/customers"), handler, "customers")
func RegisterResourceRoutes(group *gin.RouterGroup, handler ResourceRouteHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), handler.List)
	group.POST("", middleware.RequirePermission(permission+":create"), handler.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), handler.Get)
}
