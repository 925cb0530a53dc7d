package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tourism-service/internal/api/http/handlers"
	"github.com/spec-kit/tourism-service/internal/auth"
	"github.com/spec-kit/tourism-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Organization   *handlers.OrganizationHandler
	Catalog        *handlers.CatalogHandler
	Certificates   *handlers.CertificatesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Get("/tourism_certificate/:id", cfg.Certificates.Verify)

	authn := cfg.AuthMiddleware.Handle
	reviewer := auth.RequireReviewer()

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", authn, auth.RequireAnyRole(), cfg.Auth.Me)
	authGroup.Post("/verifiers", authn, auth.RequireRole(domain.RoleAdmin), cfg.Auth.CreateVerifier)

	companies := app.Group("/companies")
	companies.Post("/", cfg.Organization.RegisterCompany)
	companies.Get("/:id", authn, auth.RequireAnyRole(), cfg.Organization.GetCompany)
	companies.Post("/:id/status", authn, reviewer, cfg.Organization.TransitionCompany)
	companies.Get("/:id/tickets", authn, auth.RequireAnyRole(), cfg.Tickets.CompanyBoard)
	companies.Get("/:id/employees", authn, auth.RequireAnyRole(), cfg.Organization.ListEmployees)

	employees := app.Group("/employees", authn, auth.RequireAnyRole())
	employees.Post("/", cfg.Organization.CreateEmployee)
	employees.Get("/:id", cfg.Organization.GetEmployee)
	employees.Post("/:id/status", reviewer, cfg.Organization.TransitionEmployee)
	employees.Post("/:id/company-status", reviewer, cfg.Organization.TransitionEmployeeCompanyStatus)

	tickets := app.Group("/tickets", authn, auth.RequireAnyRole())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Post("/scan", reviewer, cfg.Tickets.ScanTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/resave", cfg.Tickets.ResaveTicket)

	activities := app.Group("/activities", authn, auth.RequireAnyRole())
	activities.Get("/", cfg.Catalog.ListActivities)
	activities.Post("/", reviewer, cfg.Catalog.SaveActivity)

	providers := app.Group("/providers", authn, auth.RequireAnyRole())
	providers.Get("/", cfg.Catalog.ListProviders)
	providers.Post("/", reviewer, cfg.Catalog.SaveProvider)
}
