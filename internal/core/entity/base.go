// Package entity provides the building blocks shared by domain aggregates.
package entity

import (
	"context"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields every company-scoped row carries.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// CompanyID is the owning company; every lookup is scoped by it
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID and timestamps.
func NewBaseEntity(companyID id.ID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CompanyID: companyID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt and the version.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// BelongsTo reports whether the row is owned by companyID.
func (b *BaseEntity) BelongsTo(companyID id.ID) bool {
	return b.CompanyID == companyID
}

// ValidateScope checks the company scope is set.
func (b *BaseEntity) ValidateScope() error {
	if id.IsNil(b.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	return nil
}
