// Package stock provides the product stock journal.
//
// Product.stock holds the current quantity; the journal records every change
// to it so the history of a product can be audited and reconciled.
package stock

import (
	"context"

	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
)

// Recorder types written to the journal.
const (
	RecorderSale        = "Sale"
	RecorderStockUpdate = "StockUpdate"
	RecorderAdjustment  = "StockAdjustment"
)

// Repository persists journal movements.
type Repository interface {
	// CreateMovements batch inserts movements
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// GetMovementHistory returns movements of a product, newest first
	GetMovementHistory(ctx context.Context, companyID, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// GetMovementsByRecorder returns all movements written by one sale or operation
	GetMovementsByRecorder(ctx context.Context, companyID, recorderID id.ID) ([]entity.StockMovement, error)
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	RecordType *entity.RecordType
	Limit      int
	Offset     int
}

// Turnover sums a set of movements.
type Turnover struct {
	Receipt int `json:"receipt"`
	Expense int `json:"expense"`
	Net     int `json:"net"`
}

// Summarize computes receipt/expense totals.
func Summarize(movements []entity.StockMovement) Turnover {
	var t Turnover
	for _, m := range movements {
		if m.RecordType == entity.RecordTypeExpense {
			t.Expense += m.Quantity
		} else {
			t.Receipt += m.Quantity
		}
	}
	t.Net = t.Receipt - t.Expense
	return t
}
