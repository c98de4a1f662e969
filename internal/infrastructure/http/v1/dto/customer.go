package dto

import (
	"tudogestao/internal/core/id"
	"tudogestao/internal/domain/customers"
)

type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Document string `json:"document" binding:"omitempty,max=20"`
	Email    string `json:"email" binding:"omitempty,max=255"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

func (r *CreateCustomerRequest) ToEntity(companyID id.ID) *customers.Customer {
	c := customers.NewCustomer(companyID, r.Name)
	c.Document = r.Document
	c.Email = r.Email
	c.Phone = r.Phone
	return c
}

type CustomerResponse struct {
	BaseResponse
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func FromCustomer(c *customers.Customer) CustomerResponse {
	return CustomerResponse{
		BaseResponse: FromBase(c.BaseEntity),
		Name:         c.Name,
		Document:     c.Document,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}
