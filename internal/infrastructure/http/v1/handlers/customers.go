package handlers

import (
	"github.com/gin-gonic/gin"

	"tudogestao/internal/domain/customers"
	"tudogestao/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	*BaseHandler
	service *customers.Service
}

func NewCustomerHandler(base *BaseHandler, service *customers.Service) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := req.ToEntity(companyID)
	if err := h.service.Create(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromCustomer(cust))
}

func (h *CustomerHandler) List(c *gin.Context) {
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
	h.OK(c, dto.NewListResponse(res, dto.FromCustomer))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cust, err := h.service.Get(c.Request.Context(), companyID, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCustomer(cust))
}
