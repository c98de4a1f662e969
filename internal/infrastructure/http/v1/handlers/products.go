package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tudogestao/internal/domain/products"
	"tudogestao/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for products and their stock.
type ProductHandler struct {
	*BaseHandler
	service *products.Service
}

func NewProductHandler(base *BaseHandler, service *products.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity(companyID)
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromProduct(p))
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	res, err := h.service.List(c.Request.Context(), q.Filter(companyID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromProduct))
}

// LowStock handles GET /products/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	res, err := h.service.LowStock(c.Request.Context(), q.Filter(companyID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromProduct))
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), companyID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), companyID, productID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// UpdateStock handles PATCH /products/:id/stock.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	op := products.StockOperation(strings.ToLower(strings.TrimSpace(req.Operation)))
	p, err := h.service.UpdateStock(c.Request.Context(), companyID, productID, req.Quantity, op)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// AdjustStock handles POST /products/:id/adjust-stock.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.AdjustStock(c.Request.Context(), companyID, productID, req.Adjustment, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// Movements handles GET /products/:id/movements.
func (h *ProductHandler) Movements(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}

	ms, err := h.service.Movements(c.Request.Context(), companyID, productID, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMovements(ms))
}
