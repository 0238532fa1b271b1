package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the token for clients that do not use the cookie.
type LoginResponse struct {
	Success   bool          `json:"success"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     AdminResponse `json:"admin"`
}

// MeResponse describes the current session.
type MeResponse struct {
	Admin AdminResponse `json:"admin"`
	Token string        `json:"token,omitempty"`
}

// CreateAdminRequest payload.
type CreateAdminRequest struct {
	Email      string           `json:"email" validate:"required,email"`
	Password   string           `json:"password" validate:"required"`
	Name       string           `json:"name" validate:"required,max=255"`
	Role       domain.AdminRole `json:"role" validate:"omitempty,oneof=admin super_admin"`
	CategoryID *int64           `json:"category_id" validate:"omitempty,gt=0"`
}

// ToInput maps the request to the service input.
func (r CreateAdminRequest) ToInput() service.AdminCreateInput {
	return service.AdminCreateInput{
		Email:      r.Email,
		Password:   r.Password,
		Name:       r.Name,
		Role:       r.Role,
		CategoryID: r.CategoryID,
	}
}

// UpdateAdminRequest payload. An omitted is_active keeps the account active.
type UpdateAdminRequest struct {
	Email      string           `json:"email" validate:"required,email"`
	Password   string           `json:"password"`
	Name       string           `json:"name" validate:"required,max=255"`
	Role       domain.AdminRole `json:"role" validate:"omitempty,oneof=admin super_admin"`
	CategoryID *int64           `json:"category_id" validate:"omitempty,gt=0"`
	IsActive   *bool            `json:"is_active"`
}

// ToInput maps the request to the service input.
func (r UpdateAdminRequest) ToInput() service.AdminUpdateInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.AdminUpdateInput{
		Email:      r.Email,
		Password:   r.Password,
		Name:       r.Name,
		Role:       r.Role,
		CategoryID: r.CategoryID,
		IsActive:   active,
	}
}

// AdminResponse never includes the password hash.
type AdminResponse struct {
	ID            int64            `json:"id"`
	Email         string           `json:"email"`
	Name          string           `json:"name"`
	Role          domain.AdminRole `json:"role"`
	CategoryID    *int64           `json:"category_id"`
	CategoryName  *string          `json:"category_name"`
	CategoryColor *string          `json:"category_color"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewAdminResponse renders an admin.
func NewAdminResponse(a domain.Admin) AdminResponse {
	return AdminResponse{
		ID:            a.ID,
		Email:         a.Email,
		Name:          a.Name,
		Role:          a.Role,
		CategoryID:    a.CategoryID,
		CategoryName:  a.CategoryName,
		CategoryColor: a.CategoryColor,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// NewAdminList renders admins.
func NewAdminList(admins []domain.Admin) []AdminResponse {
	out := make([]AdminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, NewAdminResponse(a))
	}
	return out
}

// CategoryResponse renders a category.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategoryList renders categories.
func NewCategoryList(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, Color: c.Color, CreatedAt: c.CreatedAt})
	}
	return out
}
