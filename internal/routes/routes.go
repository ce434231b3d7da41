package routes

import (
	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/handlers"
	"github.com/BradenHooton/lumina/internal/middleware"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Auth     *handlers.AuthHandler
	Search   *handlers.SearchHandler
	Firewall *handlers.FirewallHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	sessions auth.SessionSource,
	rateLimitConfig middleware.RateLimitConfig,
) {
	// Public routes - no session required
	router.Get("/health", h.Health.Health)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", h.Auth.Login)
	router.Get("/auth/lockout", h.Auth.Lockout)

	// Public routes that identify the caller when a live session token is sent
	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalSession(tokenManager, sessions))

		r.Get("/auth/session", h.Auth.Session)

		r.Get("/search", h.Search.Search)
		r.Get("/search/history", h.Search.History)
		r.Delete("/search/history", h.Search.ClearHistory)
	})

	// Protected routes - the bearer token must belong to the active session
	router.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(tokenManager, sessions))

		r.Post("/auth/logout", h.Auth.Logout)

		// Admin-only routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/firewall", h.Firewall.GetPolicy)
			r.Patch("/firewall", h.Firewall.UpdatePolicy)
			r.Post("/firewall/domains", h.Firewall.AddAllowedDomain)
			r.Delete("/firewall/domains/{domain}", h.Firewall.RemoveAllowedDomain)
			r.Post("/firewall/blockwords", h.Firewall.AddBlockWord)
			r.Delete("/firewall/blockwords/{word}", h.Firewall.RemoveBlockWord)
			r.Post("/firewall/definitions", h.Firewall.UpdateDefinitions)
			r.Post("/firewall/reset", h.Firewall.ResetPolicy)

			r.Post("/reset", h.Admin.ResetSystem)
		})
	})
}
