package entity

import (
	"context"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
)

// Document is the base type for numbered business transactions such as sales.
type Document struct {
	BaseEntity

	// Number is allocated from the per-company counter and never reused
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document dated now.
func NewDocument(companyID id.ID) Document {
	return Document{
		BaseEntity: NewBaseEntity(companyID),
		Date:       time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if err := d.ValidateScope(); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
