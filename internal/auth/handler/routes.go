package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	"github.com/hendisantika/jwt-auth-service/internal/auth/middleware"
)

// RegisterRoutes mounts the authentication endpoints and the secured sample
// route. The request authenticator runs on every request; the auth endpoints
// themselves are excluded inside it by path prefix.
func RegisterRoutes(app *fiber.App, h *AuthHandler, authenticate fiber.Handler) {
	app.Use(authenticate)

	auth := app.Group("/api/v1/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout)

	app.Get("/api/v1/hello",
		middleware.RequireAuthority(domain.AuthorityUser, domain.AuthorityAdmin),
		h.Hello)
}
