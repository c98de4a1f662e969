package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/domain/sales"
	"tudogestao/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles HTTP requests for sales.
type SaleHandler struct {
	*BaseHandler
	service     *sales.Service
	receivables *receivables.Service
}

func NewSaleHandler(base *BaseHandler, service *sales.Service, receivablesSvc *receivables.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service, receivables: receivablesSvc}
}

// Create handles POST /sales.
func (h *SaleHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(companyID, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSale(sale))
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	res, err := h.service.List(c.Request.Context(), q.ToFilter(companyID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromSale))
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Get(c.Request.Context(), companyID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// UpdateStatus handles PUT /sales/:id/status.
func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	next := sales.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	sale, err := h.service.UpdateStatus(c.Request.Context(), companyID, saleID, next)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// Cancel handles POST /sales/:id/cancel.
func (h *SaleHandler) Cancel(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Cancel(c.Request.Context(), companyID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// Delete handles DELETE /sales/:id.
func (h *SaleHandler) Delete(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), companyID, saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Receivables handles GET /sales/:id/receivables.
func (h *SaleHandler) Receivables(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	list, err := h.receivables.ListBySale(c.Request.Context(), companyID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReceivables(list))
}
