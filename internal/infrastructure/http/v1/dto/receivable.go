package dto

import (
	"time"

	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/receivables"
)

type CreateReceivableRequest struct {
	SaleID      string      `json:"saleId"`
	CustomerID  string      `json:"customerId"`
	Description string      `json:"description" binding:"required,max=255"`
	Amount      types.Money `json:"amount"`
	DueDate     time.Time   `json:"dueDate" binding:"required"`
}

func (r *CreateReceivableRequest) ToInput(companyID id.ID) (receivables.CreateInput, error) {
	in := receivables.CreateInput{
		CompanyID:   companyID,
		Description: r.Description,
		Amount:      r.Amount,
		DueDate:     r.DueDate.UTC(),
	}
	var err error
	if in.SaleID, err = optionalID(r.SaleID, "saleId"); err != nil {
		return in, err
	}
	if in.CustomerID, err = optionalID(r.CustomerID, "customerId"); err != nil {
		return in, err
	}
	return in, nil
}

type ReceivableListQuery struct {
	ListQuery
	SaleID    string     `form:"saleId"`
	Status    string     `form:"status"`
	DueBefore *time.Time `form:"dueBefore" time_format:"2006-01-02"`
}

func (q ReceivableListQuery) ToFilter(companyID id.ID) receivables.ListFilter {
	f := receivables.ListFilter{ListFilter: q.Filter(companyID), DueBefore: q.DueBefore}
	if saleID, err := id.Parse(q.SaleID); err == nil {
		f.SaleID = &saleID
	}
	if q.Status != "" {
		st := receivables.Status(q.Status)
		f.Status = &st
	}
	return f
}

type ReceivableResponse struct {
	BaseResponse
	SaleID        *string    `json:"saleId,omitempty"`
	CustomerID    *string    `json:"customerId,omitempty"`
	Description   string     `json:"description"`
	Amount        string     `json:"amount"`
	DueDate       time.Time  `json:"dueDate"`
	InstallmentNo int        `json:"installmentNo"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

func FromReceivable(r *receivables.Receivable) ReceivableResponse {
	return ReceivableResponse{
		BaseResponse:  FromBase(r.BaseEntity),
		SaleID:        idString(r.SaleID),
		CustomerID:    idString(r.CustomerID),
		Description:   r.Description,
		Amount:        money(r.Amount),
		DueDate:       r.DueDate,
		InstallmentNo: r.InstallmentNo,
		Status:        string(r.Status),
		PaidAt:        r.PaidAt,
	}
}

func FromReceivables(rs []*receivables.Receivable) []ReceivableResponse {
	out := make([]ReceivableResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromReceivable(r))
	}
	return out
}
