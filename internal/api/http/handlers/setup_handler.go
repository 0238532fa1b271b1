package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// SetupHandler exposes maintenance operations.
type SetupHandler struct {
	tickets *service.TicketService
}

// NewSetupHandler constructs handler.
func NewSetupHandler(ticketService *service.TicketService) *SetupHandler {
	return &SetupHandler{tickets: ticketService}
}

// AssignTickets POST /api/setup/assign-tickets.
func (h *SetupHandler) AssignTickets(c *fiber.Ctx) error {
	result, err := h.tickets.SweepUnassigned(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.SweepResponse{Message: "Ticket assignment completed", SweepResult: *result})
}
