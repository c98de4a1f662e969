// Package payroll computes Brazilian payroll deductions (INSS, IRRF) and the
// employer FGTS deposit for a monthly salary.
package payroll

import (
	"github.com/shopspring/decimal"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/types"
)

// Bracket is one band of a progressive table. Upper is inclusive;
// a zero Upper marks the open-ended last band.
type Bracket struct {
	Upper     decimal.Decimal
	Rate      decimal.Decimal
	Deduction decimal.Decimal
}

// INSS employee contribution table (2023), applied progressively per band.
var INSSTable = []Bracket{
	{Upper: types.MustMoney("1320.00"), Rate: decimal.RequireFromString("0.075")},
	{Upper: types.MustMoney("2571.29"), Rate: decimal.RequireFromString("0.09")},
	{Upper: types.MustMoney("3856.94"), Rate: decimal.RequireFromString("0.12")},
	{Upper: types.MustMoney("7507.49"), Rate: decimal.RequireFromString("0.14")},
}

// INSSCeiling caps the contribution base.
var INSSCeiling = types.MustMoney("7507.49")

// IRRFTable is the monthly income tax table (May 2023): base × rate − deduction.
var IRRFTable = []Bracket{
	{Upper: types.MustMoney("2112.00"), Rate: decimal.Zero, Deduction: decimal.Zero},
	{Upper: types.MustMoney("2826.65"), Rate: decimal.RequireFromString("0.075"), Deduction: types.MustMoney("158.40")},
	{Upper: types.MustMoney("3751.05"), Rate: decimal.RequireFromString("0.15"), Deduction: types.MustMoney("370.40")},
	{Upper: types.MustMoney("4664.68"), Rate: decimal.RequireFromString("0.225"), Deduction: types.MustMoney("651.73")},
	{Rate: decimal.RequireFromString("0.275"), Deduction: types.MustMoney("884.96")},
}

// DependentDeduction is subtracted from the IRRF base per dependent.
var DependentDeduction = types.MustMoney("189.59")

// FGTSRate is the employer deposit over gross salary.
var FGTSRate = decimal.RequireFromString("0.08")

// Input is a monthly payslip request.
type Input struct {
	Gross      types.Money `json:"gross"`
	Benefits   types.Money `json:"benefits"`
	Deductions types.Money `json:"deductions"`
	Dependents int         `json:"dependents"`
}

// Payslip is the computed result. All amounts are rounded to cents.
type Payslip struct {
	Gross      types.Money `json:"gross"`
	INSS       types.Money `json:"inss"`
	IRRFBase   types.Money `json:"irrfBase"`
	IRRF       types.Money `json:"irrf"`
	FGTS       types.Money `json:"fgts"`
	Benefits   types.Money `json:"benefits"`
	Deductions types.Money `json:"deductions"`
	Net        types.Money `json:"net"`
}

// Calculate computes a payslip. It has no side effects.
func Calculate(in Input) (Payslip, error) {
	if in.Gross.IsNegative() {
		return Payslip{}, apperror.NewValidation("gross salary cannot be negative").WithDetail("field", "gross")
	}
	if in.Benefits.IsNegative() {
		return Payslip{}, apperror.NewValidation("benefits cannot be negative").WithDetail("field", "benefits")
	}
	if in.Deductions.IsNegative() {
		return Payslip{}, apperror.NewValidation("deductions cannot be negative").WithDetail("field", "deductions")
	}
	if in.Dependents < 0 {
		return Payslip{}, apperror.NewValidation("dependents cannot be negative").WithDetail("field", "dependents")
	}

	inss := INSS(in.Gross)

	base := in.Gross.Sub(inss).Sub(DependentDeduction.Mul(decimal.NewFromInt(int64(in.Dependents))))
	if base.IsNegative() {
		base = decimal.Zero
	}
	irrf := IRRF(base)

	return Payslip{
		Gross:      types.RoundMoney(in.Gross),
		INSS:       inss,
		IRRFBase:   types.RoundMoney(base),
		IRRF:       irrf,
		FGTS:       FGTS(in.Gross),
		Benefits:   types.RoundMoney(in.Benefits),
		Deductions: types.RoundMoney(in.Deductions),
		Net:        types.RoundMoney(in.Gross.Sub(inss).Sub(irrf).Add(in.Benefits).Sub(in.Deductions)),
	}, nil
}

// INSS computes the progressive employee contribution.
func INSS(gross types.Money) types.Money {
	base := decimal.Min(gross, INSSCeiling)
	if !base.IsPositive() {
		return decimal.Zero
	}

	total := decimal.Zero
	lower := decimal.Zero
	for _, b := range INSSTable {
		if base.LessThanOrEqual(lower) {
			break
		}
		band := decimal.Min(base, b.Upper).Sub(lower)
		total = total.Add(band.Mul(b.Rate))
		lower = b.Upper
	}
	return types.RoundMoney(total)
}

// IRRF computes the withholding tax over an already reduced base.
func IRRF(base types.Money) types.Money {
	for _, b := range IRRFTable {
		if b.Upper.IsZero() || base.LessThanOrEqual(b.Upper) {
			tax := base.Mul(b.Rate).Sub(b.Deduction)
			if tax.IsNegative() {
				return decimal.Zero
			}
			return types.RoundMoney(tax)
		}
	}
	return decimal.Zero
}

// FGTS computes the employer deposit.
func FGTS(gross types.Money) types.Money {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return types.RoundMoney(gross.Mul(FGTSRate))
}
