// Package products provides the product catalog and its bounded stock counter.
package products

import (
	"context"
	"strings"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
)

// EntityName is used in errors, audit entries and events.
const EntityName = "Product"

// Product is a sellable item with an on-hand stock counter.
// Stock never goes below zero; MinStock only drives the low-stock listing.
type Product struct {
	entity.BaseEntity

	// Code is the SKU, unique within the company
	Code string `db:"code" json:"code"`

	Name string `db:"name" json:"name"`

	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Unit of measure: UN, KG, CX...
	Unit string `db:"unit" json:"unit"`

	SalePrice types.Money `db:"sale_price" json:"salePrice"`
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	Stock    int `db:"stock" json:"stock"`
	MinStock int `db:"min_stock" json:"minStock"`

	Active bool `db:"active" json:"active"`
}

// NewProduct creates an active product with zero stock.
func NewProduct(companyID id.ID, code, name string) *Product {
	return &Product{
		BaseEntity: entity.NewBaseEntity(companyID),
		Code:       strings.TrimSpace(code),
		Name:       strings.TrimSpace(name),
		Unit:       "UN",
		SalePrice:  types.Zero(),
		CostPrice:  types.Zero(),
		Active:     true,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.ValidateScope(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Code) == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").WithDetail("field", "salePrice")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").WithDetail("field", "costPrice")
	}
	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").WithDetail("field", "stock")
	}
	if p.MinStock < 0 {
		return apperror.NewValidation("minimum stock cannot be negative").WithDetail("field", "minStock")
	}
	return nil
}

// IsLowStock reports whether stock has reached the minimum.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// auditState is the snapshot compared by audit.Diff on update.
func (p *Product) auditState() map[string]any {
	state := map[string]any{
		"code":      p.Code,
		"name":      p.Name,
		"unit":      p.Unit,
		"salePrice": p.SalePrice.StringFixed(2),
		"costPrice": p.CostPrice.StringFixed(2),
		"minStock":  p.MinStock,
		"active":    p.Active,
	}
	if p.Barcode != nil {
		state["barcode"] = *p.Barcode
	}
	return state
}

// StockOperation is the direction of a manual stock update.
type StockOperation string

const (
	StockAdd       StockOperation = "add"
	StockDecrement StockOperation = "decrement"
)

func (o StockOperation) Valid() bool {
	return o == StockAdd || o == StockDecrement
}
