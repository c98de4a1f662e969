// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tudogestao/internal/core/idempotency"
	"tudogestao/internal/domain/audit"
	"tudogestao/internal/domain/customers"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/sales"
	"tudogestao/internal/infrastructure/http/v1/handlers"
	"tudogestao/internal/infrastructure/http/v1/middleware"
	"tudogestao/pkg/logger"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Sales       *sales.Service
	Products    *products.Service
	Customers   *customers.Service
	Receivables *receivables.Service
	AuditReader audit.Reader
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Services Services

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Idempotency is nil when idempotency keys are disabled
	Idempotency idempotency.Store

	// DB is pinged by the readiness probe; nil for the in-memory store
	DB handlers.Pinger

	CORSAllowedOrigins []string

	// Release switches gin to release mode
	Release bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator)) // 1. Validate JWT
	api.Use(middleware.Tenant())               // 2. Company from the token
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerSalesRoutes(api, base, cfg.Services)
	registerProductRoutes(api, base, cfg.Services)
	registerCustomerRoutes(api, base, cfg.Services)
	registerReceivableRoutes(api, base, cfg.Services)

	payrollHandler := handlers.NewPayrollHandler(base)
	api.POST("/payroll/calculate", middleware.RequirePermission("payroll:calculate"), payrollHandler.Calculate)

	if cfg.Services.AuditReader != nil {
		auditHandler := handlers.NewAuditHandler(base, cfg.Services.AuditReader)
		api.GET("/audit/:entityType/:entityId", middleware.RequirePermission("audit:read"), auditHandler.History)
	}

	return router
}

// corsConfig panics inside cors.New when origins is empty.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			middleware.HeaderIdempotencyKey, middleware.CompanyHeader, middleware.HeaderRequestID,
		},
		ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID, "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func registerSalesRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s Services) {
	h := handlers.NewSaleHandler(base, s.Sales, s.Receivables)
	group := rg.Group("/sales")
	RegisterResourceRoutes(group, h, "sales")
	group.PUT("/:id/status", middleware.RequirePermission("sales:update"), h.UpdateStatus)
	group.POST("/:id/cancel", middleware.RequirePermission("sales:cancel"), h.Cancel)
	group.DELETE("/:id", middleware.RequirePermission("sales:delete"), h.Delete)
	group.GET("/:id/receivables", middleware.RequirePermission("receivables:read"), h.Receivables)
}

func registerProductRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s Services) {
	h := handlers.NewProductHandler(base, s.Products)
	group := rg.Group("/products")
	// static segment registered alongside /:id; gin resolves it first
	group.GET("/low-stock", middleware.RequirePermission("products:read"), h.LowStock)
	RegisterResourceRoutes(group, h, "products")
	group.PUT("/:id", middleware.RequirePermission("products:update"), h.Update)
	group.PATCH("/:id/stock", middleware.RequirePermission("stock:update"), h.UpdateStock)
	group.POST("/:id/adjust-stock", middleware.RequirePermission("stock:adjust"), h.AdjustStock)
	group.GET("/:id/movements", middleware.RequirePermission("stock:read"), h.Movements)
}

func registerCustomerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s Services) {
	h := handlers.NewCustomerHandler(base, s.Customers)
	RegisterResourceRoutes(rg.Group("/customers"), h, "customers")
}

func registerReceivableRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s Services) {
	h := handlers.NewReceivableHandler(base, s.Receivables)
	group := rg.Group("/receivables")
	RegisterResourceRoutes(group, h, "receivables")
	group.POST("/:id/pay", middleware.RequirePermission("receivables:pay"), h.Pay)
}
