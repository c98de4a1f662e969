package dto

import (
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/payroll"
)

type PayrollRequest struct {
	Gross      types.Money `json:"gross"`
	Benefits   types.Money `json:"benefits"`
	Deductions types.Money `json:"deductions"`
	Dependents int         `json:"dependents" binding:"min=0,max=50"`
}

func (r *PayrollRequest) ToInput() payroll.Input {
	return payroll.Input{
		Gross:      r.Gross,
		Benefits:   r.Benefits,
		Deductions: r.Deductions,
		Dependents: r.Dependents,
	}
}

type PayslipResponse struct {
	Gross      string `json:"gross"`
	INSS       string `json:"inss"`
	IRRFBase   string `json:"irrfBase"`
	IRRF       string `json:"irrf"`
	FGTS       string `json:"fgts"`
	Benefits   string `json:"benefits"`
	Deductions string `json:"deductions"`
	Net        string `json:"net"`
}

func FromPayslip(p payroll.Payslip) PayslipResponse {
	return PayslipResponse{
		Gross:      money(p.Gross),
		INSS:       money(p.INSS),
		IRRFBase:   money(p.IRRFBase),
		IRRF:       money(p.IRRF),
		FGTS:       money(p.FGTS),
		Benefits:   money(p.Benefits),
		Deductions: money(p.Deductions),
		Net:        money(p.Net),
	}
}
