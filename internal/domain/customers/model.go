// Package customers provides the customer catalog referenced by sales.
package customers

import (
	"context"
	"net/mail"
	"strings"
	"unicode"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
)

const EntityName = "Customer"

// Customer is a buyer of the company.
type Customer struct {
	entity.BaseEntity

	Name string `db:"name" json:"name"`

	// Document is a CPF (11 digits) or CNPJ (14 digits), digits only
	Document string `db:"document" json:"document,omitempty"`

	Email string `db:"email" json:"email,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`
}

func NewCustomer(companyID id.ID, name string) *Customer {
	return &Customer{
		BaseEntity: entity.NewBaseEntity(companyID),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable. It normalizes Document to digits.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.ValidateScope(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}

	c.Document = digitsOnly(c.Document)
	if c.Document != "" && len(c.Document) != 11 && len(c.Document) != 14 {
		return apperror.NewValidation("document must be a CPF or CNPJ").
			WithDetail("field", "document")
	}

	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return apperror.NewValidation("invalid email").WithDetail("field", "email")
		}
	}
	return nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
