package dto

import (
	"strings"

	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/types"
	"tudogestao/internal/domain/products"
	"tudogestao/internal/domain/registers/stock"
)

// --- Request DTOs ---

type CreateProductRequest struct {
	Code      string      `json:"code" binding:"required,max=50"`
	Name      string      `json:"name" binding:"required,max=255"`
	Barcode   *string     `json:"barcode" binding:"omitempty,max=50"`
	Unit      string      `json:"unit" binding:"omitempty,max=10"`
	SalePrice types.Money `json:"salePrice"`
	CostPrice types.Money `json:"costPrice"`
	Stock     int         `json:"stock"`
	MinStock  int         `json:"minStock"`
	Active    *bool       `json:"active"`
}

func (r *CreateProductRequest) ToEntity(companyID id.ID) *products.Product {
	p := products.NewProduct(companyID, r.Code, r.Name)
	p.Barcode = r.Barcode
	if u := strings.TrimSpace(r.Unit); u != "" {
		p.Unit = strings.ToUpper(u)
	}
	p.SalePrice = r.SalePrice
	p.CostPrice = r.CostPrice
	p.Stock = r.Stock
	p.MinStock = r.MinStock
	if r.Active != nil {
		p.Active = *r.Active
	}
	return p
}

// UpdateProductRequest replaces the catalog fields. It never carries stock;
// stock changes go through the stock endpoints.
type UpdateProductRequest struct {
	Code      string      `json:"code" binding:"required,max=50"`
	Name      string      `json:"name" binding:"required,max=255"`
	Barcode   *string     `json:"barcode" binding:"omitempty,max=50"`
	Unit      string      `json:"unit" binding:"omitempty,max=10"`
	SalePrice types.Money `json:"salePrice"`
	CostPrice types.Money `json:"costPrice"`
	MinStock  int         `json:"minStock"`
	Active    *bool       `json:"active"`
	Version   int         `json:"version" binding:"required,min=1"`
}

func (r *UpdateProductRequest) ToInput() products.UpdateInput {
	in := products.UpdateInput{
		Code:      r.Code,
		Name:      r.Name,
		Barcode:   r.Barcode,
		Unit:      strings.ToUpper(strings.TrimSpace(r.Unit)),
		SalePrice: r.SalePrice,
		CostPrice: r.CostPrice,
		MinStock:  r.MinStock,
		Active:    true,
		Version:   r.Version,
	}
	if r.Active != nil {
		in.Active = *r.Active
	}
	return in
}

type UpdateStockRequest struct {
	Quantity  int    `json:"quantity" binding:"required"`
	Operation string `json:"operation" binding:"required"`
}

type AdjustStockRequest struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason" binding:"max=500"`
}

type MovementQuery struct {
	RecordType string `form:"recordType"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

func (q MovementQuery) ToFilter() stock.MovementFilter {
	f := stock.MovementFilter{Limit: q.Limit, Offset: q.Offset}
	if q.RecordType != "" {
		rt := entity.RecordType(q.RecordType)
		f.RecordType = &rt
	}
	return f
}

// --- Response DTOs ---

type ProductResponse struct {
	BaseResponse
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Barcode   *string `json:"barcode,omitempty"`
	Unit      string  `json:"unit"`
	SalePrice string  `json:"salePrice"`
	CostPrice string  `json:"costPrice"`
	Stock     int     `json:"stock"`
	MinStock  int     `json:"minStock"`
	LowStock  bool    `json:"lowStock"`
	Active    bool    `json:"active"`
}

func FromProduct(p *products.Product) ProductResponse {
	return ProductResponse{
		BaseResponse: FromBase(p.BaseEntity),
		Code:         p.Code,
		Name:         p.Name,
		Barcode:      p.Barcode,
		Unit:         p.Unit,
		SalePrice:    money(p.SalePrice),
		CostPrice:    money(p.CostPrice),
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		LowStock:     p.IsLowStock(),
		Active:       p.Active,
	}
}

type MovementResponse struct {
	LineID       string `json:"lineId"`
	RecorderID   string `json:"recorderId"`
	RecorderType string `json:"recorderType"`
	RecordType   string `json:"recordType"`
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	Signed       int    `json:"signedQuantity"`
	Reason       string `json:"reason,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func FromMovements(ms []entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, MovementResponse{
			LineID:       m.LineID.String(),
			RecorderID:   m.RecorderID.String(),
			RecorderType: m.RecorderType,
			RecordType:   string(m.RecordType),
			ProductID:    m.ProductID.String(),
			Quantity:     m.Quantity,
			Signed:       m.SignedQuantity(),
			Reason:       m.Reason,
			CreatedAt:    m.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return out
}
