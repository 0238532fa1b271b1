package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// CustomerHandler serves the unauthenticated customer view of a ticket.
// Internal notes never leave this handler.
type CustomerHandler struct {
	service *service.TicketService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(ticketService *service.TicketService) *CustomerHandler {
	return &CustomerHandler{service: ticketService}
}

// GetTicket GET /api/tickets/customer/:id.
func (h *CustomerHandler) GetTicket(c *fiber.Ctx) error {
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

// ListMessages GET /api/tickets/customer/:id/messages.
func (h *CustomerHandler) ListMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	comments, err := h.service.ListCustomerMessages(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentList(comments, false))
}

// PostMessage POST /api/tickets/customer/:id/messages.
func (h *CustomerHandler) PostMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.CustomerMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddCustomerMessage(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(*comment, false))
}
