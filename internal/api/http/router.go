package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/api/http/handlers"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/idempotency"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Tickets          *handlers.TicketsHandler
	StaffTickets     *handlers.StaffTicketsHandler
	Staff            *handlers.StaffHandler
	Imports          *handlers.ImportsHandler
	AuthMiddleware   *auth.AuthMiddleware
	IdempotencyStore idempotency.Store
	IdempotencyTTL   time.Duration
	Logger           *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Staff.Login)

	idem := idempotency.Middleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, tenantScope, cfg.Logger)

	guest := app.Group("/guest", cfg.AuthMiddleware.Handle, auth.RequireGuest())
	guest.Post("/tickets", idem, cfg.Tickets.CreateTicket)
	guest.Get("/tickets", cfg.Tickets.ListTickets)
	guest.Get("/tickets/:id", cfg.Tickets.GetTicket)
	guest.Post("/tickets/:id/comments", idem, cfg.Tickets.AddComment)
	guest.Post("/tickets/:id/reopen", idem, cfg.Tickets.Reopen)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Post("/tickets", idem, cfg.StaffTickets.CreateTicket)
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Post("/tickets/:id/transitions", idem, cfg.StaffTickets.Transition)
	staff.Post("/tickets/:id/comments", idem, cfg.StaffTickets.AddComment)
	staff.Post("/availability", cfg.Staff.SetAvailability)
	staff.Post("/stays/:id/guest-token", cfg.Staff.IssueGuestToken)

	supervisors := staff.Group("", auth.RequireStaff(domain.StaffRoleSupervisor, domain.StaffRoleAdmin))
	supervisors.Get("/members", cfg.Staff.ListMembers)
	supervisors.Post("/imports", idem, cfg.Imports.Submit)
	supervisors.Post("/imports/run", cfg.Imports.Run)
}

// tenantScope resolves the idempotency tenant from the authenticated
// principal: staff keys are hotel-scoped, guest keys stay-scoped.
func tenantScope(c *fiber.Ctx) string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return ""
	}
	if principal.Staff != nil {
		return principal.Staff.HotelID
	}
	if principal.StayID != nil {
		return *principal.StayID
	}
	return ""
}
