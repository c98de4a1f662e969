package sales

import (
	"fmt"
	"strings"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
)

// ItemInput is one requested line of a new sale.
type ItemInput struct {
	ProductID id.ID
	Quantity  int

	// UnitPrice defaults to the product's sale price when nil
	UnitPrice *types.Money

	Discount types.Money
}

// CreateSaleInput is a validated request to create a sale.
// Build it with NewCreateSaleInput.
type CreateSaleInput struct {
	CompanyID     id.ID
	CustomerID    id.ID
	Items         []ItemInput
	Discount      types.Money
	PaymentMethod PaymentMethod
	Installments  int
	Date          time.Time
	Notes         string
	CreatedBy     string
}

// NewCreateSaleInput normalizes defaults and validates the request shape.
// Checks that need the database (customer and product existence, stock)
// are done by Service.Create.
func NewCreateSaleInput(in CreateSaleInput) (CreateSaleInput, error) {
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}
	in.PaymentMethod = PaymentMethod(strings.ToUpper(string(in.PaymentMethod)))
	if in.Installments == 0 {
		in.Installments = 1
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	in.Notes = strings.TrimSpace(in.Notes)

	if err := in.Validate(); err != nil {
		return CreateSaleInput{}, err
	}
	return in, nil
}

// Validate checks the request shape.
func (in CreateSaleInput) Validate() error {
	if id.IsNil(in.CompanyID) {
		return apperror.NewValidation("company is required").WithDetail("field", "companyId")
	}
	if id.IsNil(in.CustomerID) {
		return apperror.NewValidation("customer is required").WithDetail("field", "customerId")
	}
	if len(in.Items) == 0 {
		return apperror.NewValidation("sale must have at least one item").WithDetail("field", "items")
	}

	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").WithDetail("field", field+".productId")
		}
		if it.Quantity < 1 {
			return apperror.NewValidation("quantity must be at least 1").
				WithDetail("field", field+".quantity").
				WithDetail("value", it.Quantity)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").WithDetail("field", field+".unitPrice")
		}
		if it.Discount.IsNegative() {
			return apperror.NewValidation("item discount cannot be negative").WithDetail("field", field+".discount")
		}
		if it.UnitPrice != nil && it.Discount.GreaterThan(types.LineTotal(*it.UnitPrice, it.Quantity)) {
			return apperror.NewValidation("item discount cannot exceed the line total").WithDetail("field", field+".discount")
		}
	}

	if in.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").WithDetail("field", "discount")
	}
	if !in.PaymentMethod.Valid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(in.PaymentMethod))
	}
	if in.Installments < 1 || in.Installments > 48 {
		return apperror.NewValidation("installments must be between 1 and 48").WithDetail("field", "installments")
	}
	return nil
}
