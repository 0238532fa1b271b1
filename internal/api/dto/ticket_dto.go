package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string                `json:"title" validate:"required,max=500"`
	Description   string                `json:"description" validate:"required"`
	CustomerName  string                `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string                `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone *string               `json:"customer_phone" validate:"omitempty,max=64"`
	CategoryID    *int64                `json:"category_id" validate:"required,gt=0"`
	Priority      domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// ToInput maps the request to the service input.
func (r CreateTicketRequest) ToInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		Title:         r.Title,
		Description:   r.Description,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		CategoryID:    r.CategoryID,
		Priority:      r.Priority,
	}
}

// UpdateTicketRequest payload. Absent fields are left unchanged.
type UpdateTicketRequest struct {
	Status          *domain.TicketStatus   `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority        *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedAdminID OptionalID             `json:"assigned_admin_id"`
	Title           *string                `json:"title" validate:"omitempty,max=500"`
	Description     *string                `json:"description"`
}

// ToInput maps the request to the service input.
func (r UpdateTicketRequest) ToInput() service.TicketUpdateInput {
	return service.TicketUpdateInput{
		Status:      r.Status,
		Priority:    r.Priority,
		Assignee:    service.AssigneeChange{Set: r.AssignedAdminID.Set, ID: r.AssignedAdminID.Value},
		Title:       r.Title,
		Description: r.Description,
	}
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedAdminID int64  `json:"assigned_admin_id" validate:"required,gt=0"`
	Reason          string `json:"reason" validate:"max=1000"`
}

// TicketResponse is the joined ticket read shape.
type TicketResponse struct {
	ID                int64                 `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Status            domain.TicketStatus   `json:"status"`
	Priority          domain.TicketPriority `json:"priority"`
	CustomerName      string                `json:"customer_name"`
	CustomerEmail     string                `json:"customer_email"`
	CustomerPhone     *string               `json:"customer_phone"`
	CategoryID        *int64                `json:"category_id"`
	CategoryName      string                `json:"category_name"`
	CategoryColor     string                `json:"category_color"`
	AssignedAdminID   *int64                `json:"assigned_admin_id"`
	AssignedAdminName *string               `json:"assigned_admin_name"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	ResolvedAt        *time.Time            `json:"resolved_at"`
}

// NewTicketResponse renders a ticket. Uncategorised tickets read as General.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Status:            t.Status,
		Priority:          t.Priority,
		CustomerName:      t.CustomerName,
		CustomerEmail:     t.CustomerEmail,
		CustomerPhone:     t.CustomerPhone,
		CategoryID:        t.CategoryID,
		CategoryName:      "General",
		CategoryColor:     domain.DefaultCategoryColor,
		AssignedAdminID:   t.AssignedAdminID,
		AssignedAdminName: t.AssignedAdminName,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		ResolvedAt:        t.ResolvedAt,
	}
	if t.CategoryName != nil {
		resp.CategoryName = *t.CategoryName
	}
	if t.CategoryColor != nil {
		resp.CategoryColor = *t.CategoryColor
	}
	return resp
}

// NewTicketList renders a list.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}

// SweepResponse reports a bulk assignment.
type SweepResponse struct {
	Message string `json:"message"`
	service.SweepResult
}
