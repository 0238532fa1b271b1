package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Customer       *handlers.CustomerHandler
	Admins         *handlers.AdminsHandler
	Categories     *handlers.CategoriesHandler
	Upload         *handlers.UploadHandler
	Setup          *handlers.SetupHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	requireAuth := cfg.AuthMiddleware.Handle
	requireSuper := auth.RequireRole(domain.AdminRoleSuperAdmin)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", requireAuth, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.Auth.Logout)

	api.Get("/categories", cfg.Categories.List)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.AuthMiddleware.Optional, cfg.Tickets.Create)
	tickets.Get("/", requireAuth, cfg.Tickets.ListForAdmin)

	customer := tickets.Group("/customer")
	customer.Get("/:id", cfg.Customer.GetTicket)
	customer.Get("/:id/messages", cfg.Customer.ListMessages)
	customer.Post("/:id/messages", cfg.Customer.PostMessage)

	tickets.Get("/admin", requireAuth, cfg.Tickets.ListForAdmin)
	tickets.Get("/all", requireAuth, cfg.Tickets.ListAll)
	tickets.Get("/resolved", requireAuth, cfg.Tickets.ListResolved)
	tickets.Get("/:id", requireAuth, cfg.Tickets.Get)
	tickets.Put("/:id", requireAuth, cfg.Tickets.Update)
	tickets.Put("/:id/assign", requireAuth, cfg.Tickets.Assign)
	tickets.Get("/:id/comments", requireAuth, cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", requireAuth, cfg.Tickets.AddComment)
	tickets.Get("/:id/messages", requireAuth, cfg.Tickets.ListComments)
	tickets.Post("/:id/messages", requireAuth, cfg.Tickets.AddComment)

	admins := api.Group("/admins", requireAuth)
	admins.Get("/", cfg.Admins.ListActive)
	admins.Get("/all", cfg.Admins.List)
	admins.Post("/", requireSuper, cfg.Admins.Create)
	admins.Put("/:id", requireSuper, cfg.Admins.Update)
	admins.Delete("/:id", requireSuper, cfg.Admins.Delete)

	api.Post("/upload", requireAuth, cfg.Upload.Upload)
	api.Post("/setup/assign-tickets", requireAuth, requireSuper, cfg.Setup.AssignTickets)
}
