package handlers

import (
	"github.com/gin-gonic/gin"

	"tudogestao/internal/domain/payroll"
	"tudogestao/internal/infrastructure/http/v1/dto"
)

// PayrollHandler exposes the payslip calculator. It has no state.
type PayrollHandler struct {
	*BaseHandler
}

func NewPayrollHandler(base *BaseHandler) *PayrollHandler {
	return &PayrollHandler{BaseHandler: base}
}

// Calculate handles POST /payroll/calculate.
func (h *PayrollHandler) Calculate(c *gin.Context) {
	var req dto.PayrollRequest
	if !h.BindJSON(c, &req) {
		return
	}

	slip, err := payroll.Calculate(req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPayslip(slip))
}
