package entity

import (
	"time"

	"tudogestao/internal/core/id"
)

// RecordType defines movement direction in the stock journal.
type RecordType string

const (
	// RecordTypeReceipt increases stock
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases stock
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains the fields common to journal movements.
// Movements are immutable: they are appended and never updated.
type MovementBase struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// RecorderID is the sale or product that caused the movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is e.g. "Sale" or "StockAdjustment"
	RecorderType string `db:"recorder_type" json:"recorderType"`

	RecordType RecordType `db:"record_type" json:"recordType"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a movement base with a generated LineID.
func NewMovementBase(companyID, recorderID id.ID, recorderType string, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:       id.New(),
		CompanyID:    companyID,
		RecorderID:   recorderID,
		RecorderType: recorderType,
		RecordType:   recordType,
		CreatedAt:    time.Now().UTC(),
	}
}

// StockMovement is one line of the product stock journal.
type StockMovement struct {
	MovementBase

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity is always positive; direction comes from RecordType
	Quantity int `db:"quantity" json:"quantity"`

	Reason string `db:"reason" json:"reason,omitempty"`
}

// SignedQuantity returns the quantity with the sign of its direction.
func (m StockMovement) SignedQuantity() int {
	if m.RecordType == RecordTypeExpense {
		return -m.Quantity
	}
	return m.Quantity
}
