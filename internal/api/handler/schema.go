package handler

import (
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the central handler.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=USER ADMIN"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Sweets ---

type createSweetRequest struct {
	Name       string           `json:"name"       validate:"required,max=120"`
	Price      *decimal.Decimal `json:"price"      validate:"required"`
	Stock      *int             `json:"stock"      validate:"required,gte=0"`
	CategoryID string           `json:"categoryId" validate:"required"`
}

// updateSweetRequest is validated by the service after the ownership check,
// so it carries no validate tags.
type updateSweetRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	Stock      *int             `json:"stock"`
	CategoryID *string          `json:"categoryId"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type sweetListResponse struct {
	Data []*domain.Sweet `json:"data"`
}

type deleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// --- Categories ---

type createCategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=80"`
	Description string `json:"description" validate:"max=500"`
}

type categoryListResponse struct {
	Data []*domain.Category `json:"data"`
}
