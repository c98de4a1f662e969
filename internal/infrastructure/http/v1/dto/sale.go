package dto

import (
	"time"

	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/sales"
)

// --- Request DTOs ---

type CreateSaleRequest struct {
	CustomerID    string                  `json:"customerId" binding:"required"`
	Items         []CreateSaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount      types.Money             `json:"discount"`
	PaymentMethod string                  `json:"paymentMethod"`
	Installments  int                     `json:"installments"`
	Date          *time.Time              `json:"date"`
	Notes         string                  `json:"notes"`
}

type CreateSaleItemRequest struct {
	ProductID string       `json:"productId" binding:"required"`
	Quantity  int          `json:"quantity"`
	UnitPrice *types.Money `json:"unitPrice"`
	Discount  types.Money  `json:"discount"`
}

// ToInput converts the request. Malformed ids become nil ids and fail validation.
func (r *CreateSaleRequest) ToInput(companyID id.ID, createdBy string) (sales.CreateSaleInput, error) {
	customerID, _ := id.Parse(r.CustomerID)

	in := sales.CreateSaleInput{
		CompanyID:     companyID,
		CustomerID:    customerID,
		Discount:      r.Discount,
		PaymentMethod: sales.PaymentMethod(r.PaymentMethod),
		Installments:  r.Installments,
		Notes:         r.Notes,
		CreatedBy:     createdBy,
	}
	if r.Date != nil {
		in.Date = r.Date.UTC()
	}
	for _, it := range r.Items {
		productID, _ := id.Parse(it.ProductID)
		in.Items = append(in.Items, sales.ItemInput{
			ProductID: productID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
		})
	}
	return sales.NewCreateSaleInput(in)
}

type UpdateSaleStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SaleListQuery adds the sale filters to ListQuery.
type SaleListQuery struct {
	ListQuery
	CustomerID string     `form:"customerId"`
	Status     string     `form:"status"`
	DateFrom   *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"dateTo" time_format:"2006-01-02"`
}

func (q SaleListQuery) ToFilter(companyID id.ID) sales.ListFilter {
	f := sales.ListFilter{ListFilter: q.Filter(companyID), DateFrom: q.DateFrom}
	if customerID, err := id.Parse(q.CustomerID); err == nil {
		f.CustomerID = &customerID
	}
	if q.Status != "" {
		st := sales.Status(q.Status)
		f.Status = &st
	}
	if q.DateTo != nil {
		// inclusive: the whole day
		end := q.DateTo.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}
	return f
}

// --- Response DTOs ---

type SaleResponse struct {
	BaseResponse
	Number        string              `json:"number"`
	Date          time.Time           `json:"date"`
	CustomerID    string              `json:"customerId"`
	Customer      *CustomerResponse   `json:"customer,omitempty"`
	Subtotal      string              `json:"subtotal"`
	Discount      string              `json:"discount"`
	NetAmount     string              `json:"netAmount"`
	PaymentMethod string              `json:"paymentMethod"`
	Installments  int                 `json:"installments"`
	Status        string              `json:"status"`
	StockReversed bool                `json:"stockReversed"`
	Notes         string              `json:"notes,omitempty"`
	CreatedBy     string              `json:"createdBy,omitempty"`
	Items         []SaleItemResponse  `json:"items"`
}

type SaleItemResponse struct {
	ID        string `json:"id"`
	LineNo    int    `json:"lineNo"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
}

func FromSale(s *sales.Sale) SaleResponse {
	resp := SaleResponse{
		BaseResponse:  FromBase(s.BaseEntity),
		Number:        s.Number,
		Date:          s.Date,
		CustomerID:    s.CustomerID.String(),
		Subtotal:      money(s.Subtotal),
		Discount:      money(s.Discount),
		NetAmount:     money(s.NetAmount),
		PaymentMethod: string(s.PaymentMethod),
		Installments:  s.Installments,
		Status:        string(s.Status),
		StockReversed: s.StockReversed,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		Items:         make([]SaleItemResponse, 0, len(s.Items)),
	}
	if s.Customer != nil {
		c := FromCustomer(s.Customer)
		resp.Customer = &c
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:        it.ID.String(),
			LineNo:    it.LineNo,
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Discount:  money(it.Discount),
			Total:     money(it.Total),
		})
	}
	return resp
}
