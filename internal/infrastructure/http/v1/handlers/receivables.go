package handlers

import (
	"github.com/gin-gonic/gin"

	"tudogestao/internal/domain/receivables"
	"tudogestao/internal/infrastructure/http/v1/dto"
)

// ReceivableHandler handles HTTP requests for accounts receivable.
type ReceivableHandler struct {
	*BaseHandler
	service *receivables.Service
}

func NewReceivableHandler(base *BaseHandler, service *receivables.Service) *ReceivableHandler {
	return &ReceivableHandler{BaseHandler: base, service: service}
}

func (h *ReceivableHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var req dto.CreateReceivableRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromReceivable(r))
}

func (h *ReceivableHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	var q dto.ReceivableListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	res, err := h.service.List(c.Request.Context(), q.ToFilter(companyID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromReceivable))
}

func (h *ReceivableHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	receivableID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), companyID, receivableID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReceivable(r))
}

// Pay handles POST /receivables/:id/pay. Paying a paid receivable is a no-op.
func (h *ReceivableHandler) Pay(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	receivableID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.MarkPaid(c.Request.Context(), companyID, receivableID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReceivable(r))
}
