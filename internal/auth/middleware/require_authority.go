package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hendisantika/jwt-auth-service/internal/auth/dto"
)

// RequireAuthority guards a route: the request must carry an authenticated
// principal holding at least one of the given authorities.
func RequireAuthority(authorities ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return deny(c, fiber.StatusUnauthorized, "authentication required")
		}

		for _, required := range authorities {
			for _, held := range principal.Authorities {
				if held == required {
					return c.Next()
				}
			}
		}

		return deny(c, fiber.StatusForbidden, "insufficient authority")
	}
}

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Timestamp: time.Now(),
		Message:   message,
		Path:      c.Path(),
	})
}
