package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-service/internal/api/http/handlers"
	"github.com/spec-kit/member-service/internal/auth"
	"github.com/spec-kit/member-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Sessions *handlers.SessionHandler
	Session  *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes with their role guards.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")

	users.Post("/login", cfg.Session.RequireLoggedOut, cfg.Sessions.Login)
	users.Post("/logout", cfg.Sessions.Logout)

	adminOnly := []fiber.Handler{
		cfg.Session.RequireSession,
		auth.RequireRoles(domain.RoleAdministrator),
	}
	readers := []fiber.Handler{
		cfg.Session.RequireSession,
		auth.RequireRoles(domain.RoleAdministrator, domain.RoleMember),
	}
	anyMember := []fiber.Handler{
		cfg.Session.RequireSession,
		auth.RequireRoles(domain.RoleAdministrator, domain.RoleMember, domain.RoleTrainee),
	}

	users.Post("/create", withGuards(adminOnly, cfg.Users.Create)...)

	users.Get("/get", withGuards(readers, cfg.Users.List)...)
	users.Get("/get/email/:email", withGuards(readers, cfg.Users.GetByEmail)...)
	users.Get("/get/id/:id", withGuards(readers, cfg.Users.GetByID)...)
	users.Get("/get/phone/:phone", withGuards(readers, cfg.Users.GetByPhoneNumber)...)

	users.Put("/update/role/:id", withGuards(adminOnly, cfg.Users.UpdateRole)...)
	users.Put("/update/password/:id", withGuards(anyMember, cfg.Users.UpdatePassword)...)
	users.Put("/update/:id", withGuards(anyMember, cfg.Users.Update)...)
	users.Put("/approve/:id", withGuards(adminOnly, cfg.Users.Approve)...)

	users.Delete("/delete/email/:email", withGuards(adminOnly, cfg.Users.DeleteByEmail)...)
	users.Delete("/delete/id/:id", withGuards(adminOnly, cfg.Users.DeleteByID)...)
}

func withGuards(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, handler)
}
