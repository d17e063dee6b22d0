package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iticket/helpdesk/internal/api/http/handlers"
	"github.com/iticket/helpdesk/internal/auth"
	"github.com/iticket/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Templates      *handlers.TemplatesHandler
	Tickets        *handlers.TicketsHandler
	Assignments    *handlers.AssignmentsHandler
	Chat           *handlers.ChatHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Static("/uploads", cfg.UploadDir)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	api.Post("/auth/logout", cfg.Auth.Logout)
	api.Get("/auth/me", cfg.Auth.Me)
	api.Patch("/auth/me", cfg.Auth.UpdateProfile)

	admin := auth.RequireRole(domain.RoleAdmin)
	staff := auth.RequireRole(domain.RoleAdmin, domain.RoleHelpdesk)

	api.Get("/users", admin, cfg.Auth.ListUsers)
	api.Post("/users", admin, cfg.Auth.CreateUser)

	templates := api.Group("/forms/templates")
	templates.Get("/", cfg.Templates.List)
	templates.Get("/:id", cfg.Templates.Get)
	templates.Post("/", admin, cfg.Templates.Create)
	templates.Put("/:id", admin, cfg.Templates.Update)
	templates.Delete("/:id", admin, cfg.Templates.Delete)

	submissions := api.Group("/forms/submissions")
	submissions.Get("/stats", staff, cfg.Tickets.Stats)
	submissions.Get("/", cfg.Tickets.List)
	submissions.Post("/", cfg.Tickets.Submit)
	submissions.Get("/:id", cfg.Tickets.Get)
	submissions.Put("/:id", cfg.Tickets.Update)
	submissions.Post("/:id/revoke", cfg.Tickets.Revoke)
	submissions.Get("/:id/audit", cfg.Tickets.ListAudit)

	api.Get("/assignments", cfg.Assignments.List)
	api.Post("/assignments", staff, cfg.Assignments.Assign)
	api.Delete("/assignments", staff, cfg.Assignments.Unassign)

	chat := api.Group("/chat/messages")
	chat.Get("/", cfg.Chat.ListMessages)
	chat.Post("/", cfg.Chat.Send)
	chat.Post("/read", cfg.Chat.MarkRead)

	api.Post("/upload", cfg.Uploads.Upload)
}
