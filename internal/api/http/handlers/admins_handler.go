package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// AdminsHandler manages admin accounts.
type AdminsHandler struct {
	service *service.AdminService
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(adminService *service.AdminService) *AdminsHandler {
	return &AdminsHandler{service: adminService}
}

// ListActive GET /api/admins.
func (h *AdminsHandler) ListActive(c *fiber.Ctx) error {
	admins, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAdminList(admins))
}

// List GET /api/admins/all.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	admins, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAdminList(admins))
}

// Create POST /api/admins.
func (h *AdminsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	admin, err := h.service.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAdminResponse(*admin))
}

// Update PUT /api/admins/:id.
func (h *AdminsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "admin")
	if err != nil {
		return err
	}
	var req dto.UpdateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	admin, err := h.service.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAdminResponse(*admin))
}

// Delete DELETE /api/admins/:id.
func (h *AdminsHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "admin")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), p.Admin.ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Admin deleted successfully"})
}
