package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/service"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /api/tickets. Public; a signed-in admin is recorded as the
// creator instead of the customer.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor := events.Actor{Type: events.ActorCustomer, Name: req.CustomerName}
	if p, ok := auth.PrincipalFromContext(c); ok {
		actor = events.Actor{Type: events.ActorAdmin, AdminID: &p.Admin.ID, Name: p.Admin.Name}
	}
	ticket, err := h.service.Create(c.UserContext(), req.ToInput(), actor)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTicketResponse(*ticket))
}

// ListForAdmin GET /api/tickets and /api/tickets/admin.
func (h *TicketsHandler) ListForAdmin(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListForAdmin(c.UserContext(), p.Admin)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// ListAll GET /api/tickets/all?status=open,in_progress.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	var statuses []domain.TicketStatus
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			statuses = append(statuses, domain.TicketStatus(raw))
		}
	}
	tickets, err := h.service.ListAll(c.UserContext(), statuses)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// ListResolved GET /api/tickets/resolved.
func (h *TicketsHandler) ListResolved(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListResolved(c.UserContext(), p.Admin)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(*ticket))
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Update(c.UserContext(), id, req.ToInput(), p.Admin)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(*ticket))
}

// Assign PUT /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Assign(c.UserContext(), id, req.AssignedAdminID, req.Reason, p.Admin)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(*ticket))
}

// ListComments GET /api/tickets/:id/comments and /messages. Includes internal notes.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentList(comments, true))
}

// AddComment POST /api/tickets/:id/comments and /messages.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddAdminComment(c.UserContext(), id, p.Admin, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(*comment, true))
}
