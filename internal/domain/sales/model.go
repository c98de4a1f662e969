// Package sales provides the Sale aggregate and its lifecycle service.
package sales

import (
	"context"
	"fmt"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/customers"
)

const EntityName = "Sale"

// Status is the payment/lifecycle status of a sale.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPartial   Status = "PARTIAL"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// transitions lists the statuses reachable through a plain status update.
// CANCELLED is reached only through the cancel path.
var transitions = map[Status][]Status{
	StatusPending: {StatusPartial, StatusPaid},
	StatusPartial: {StatusPaid},
}

// CanTransition reports whether a status update from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentPix         PaymentMethod = "PIX"
	PaymentDebitCard   PaymentMethod = "DEBIT_CARD"
	PaymentCreditCard  PaymentMethod = "CREDIT_CARD"
	PaymentBankSlip    PaymentMethod = "BANK_SLIP"
	PaymentStoreCredit PaymentMethod = "STORE_CREDIT"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentDebitCard, PaymentCreditCard, PaymentBankSlip, PaymentStoreCredit:
		return true
	}
	return false
}

// SettlesLater reports whether the sale is collected through receivables.
func (m PaymentMethod) SettlesLater() bool {
	return m == PaymentBankSlip || m == PaymentStoreCredit
}

// Sale is a numbered sales document with its items.
type Sale struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
	Discount  types.Money `db:"discount" json:"discount"`
	NetAmount types.Money `db:"net_amount" json:"netAmount"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Installments  int           `db:"installments" json:"installments"`

	Status Status `db:"status" json:"status"`

	// StockReversed is set once the item quantities have been returned to stock.
	// It guards against returning them twice (cancel followed by delete).
	StockReversed bool `db:"stock_reversed" json:"stockReversed"`

	Items    []SaleItem          `db:"-" json:"items"`
	Customer *customers.Customer `db:"-" json:"customer,omitempty"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID        id.ID       `db:"id" json:"id"`
	SaleID    id.ID       `db:"sale_id" json:"saleId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int         `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Discount is stored per line and reflected in Total only;
	// the sale subtotal does not subtract it.
	Discount types.Money `db:"discount" json:"discount"`
	Total    types.Money `db:"total" json:"total"`
}

// Gross returns quantity × unit price.
func (it SaleItem) Gross() types.Money {
	return types.LineTotal(it.UnitPrice, it.Quantity)
}

// NewSale creates a PENDING sale for the customer.
func NewSale(companyID, customerID id.ID) *Sale {
	return &Sale{
		Document:      entity.NewDocument(companyID),
		CustomerID:    customerID,
		Subtotal:      types.Zero(),
		Discount:      types.Zero(),
		NetAmount:     types.Zero(),
		PaymentMethod: PaymentCash,
		Installments:  1,
		Status:        StatusPending,
	}
}

// AddItem appends a line and recalculates totals.
func (s *Sale) AddItem(productID id.ID, quantity int, unitPrice, discount types.Money) {
	item := SaleItem{
		ID:        id.New(),
		SaleID:    s.ID,
		LineNo:    len(s.Items) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Discount:  discount,
	}
	item.Total = item.Gross().Sub(discount)
	s.Items = append(s.Items, item)
	s.recalculateTotals()
}

// SetDiscount sets the sale-level discount and recalculates totals.
func (s *Sale) SetDiscount(discount types.Money) {
	s.Discount = discount
	s.recalculateTotals()
}

// recalculateTotals keeps subtotal = Σ unitPrice × quantity and
// netAmount = subtotal − discount.
func (s *Sale) recalculateTotals() {
	subtotal := types.Zero()
	for _, it := range s.Items {
		subtotal = subtotal.Add(it.Gross())
	}
	s.Subtotal = subtotal
	s.NetAmount = subtotal.Sub(s.Discount)
}

// ItemDiscountTotal is the sum of line discounts, which the subtotal ignores.
func (s *Sale) ItemDiscountTotal() types.Money {
	total := types.Zero()
	for _, it := range s.Items {
		total = total.Add(it.Discount)
	}
	return total
}

// Quantities sums item quantities per product.
func (s *Sale) Quantities() map[id.ID]int {
	q := make(map[id.ID]int, len(s.Items))
	for _, it := range s.Items {
		q[it.ProductID] += it.Quantity
	}
	return q
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").WithDetail("field", "customerId")
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("sale must have at least one item").WithDetail("field", "items")
	}
	for i, it := range s.Items {
		if it.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("item %d: quantity must be greater than zero", i+1)).
				WithDetail("field", fmt.Sprintf("items[%d].quantity", i))
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("item %d: unit price cannot be negative", i+1)).
				WithDetail("field", fmt.Sprintf("items[%d].unitPrice", i))
		}
	}
	if s.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").WithDetail("field", "discount")
	}
	if s.Discount.GreaterThan(s.Subtotal) {
		return apperror.NewValidation("discount cannot exceed subtotal").
			WithDetail("field", "discount").
			WithDetail("subtotal", s.Subtotal.StringFixed(2))
	}
	if !s.PaymentMethod.Valid() {
		return apperror.NewValidation("invalid payment method").WithDetail("field", "paymentMethod")
	}
	if s.Installments < 1 {
		return apperror.NewValidation("installments must be at least 1").WithDetail("field", "installments")
	}
	return nil
}

// CanDelete checks the status allows deletion.
func (s *Sale) CanDelete() error {
	switch s.Status {
	case StatusPaid:
		return apperror.NewInvalidState("cannot delete a paid sale").
			WithDetail("sale_id", s.ID.String())
	case StatusPartial:
		return apperror.NewInvalidState("cannot delete a partially paid sale").
			WithDetail("sale_id", s.ID.String())
	}
	return nil
}
