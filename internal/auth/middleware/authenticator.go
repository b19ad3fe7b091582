package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	"github.com/hendisantika/jwt-auth-service/internal/auth/service"
	"github.com/hendisantika/jwt-auth-service/pkg/constant"
)

const principalKey = "auth.principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	User        *domain.User
	Authorities []string
}

// PrincipalFrom reads the identity the authenticator attached, if any.
func PrincipalFrom(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok
}

type AuthenticatorConfig struct {
	Tokens service.TokenGenerator
	Users  domain.UserRepository

	// Cookie checked before the Authorization header.
	AccessCookieName string

	// Requests whose path starts with any of these skip authentication entirely.
	ExcludedPrefixes []string
}

// NewRequestAuthenticator enriches the request with an authenticated identity
// when a valid bearer token is presented. It never rejects a request itself:
// a missing, malformed or expired token just leaves the request
// unauthenticated and downstream authorization decides.
func NewRequestAuthenticator(cfg AuthenticatorConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, prefix := range cfg.ExcludedPrefixes {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		token := c.Cookies(cfg.AccessCookieName)
		if token == "" {
			header := c.Get(constant.AuthorizationHeader)
			if strings.HasPrefix(header, constant.BearerPrefix) {
				token = strings.TrimPrefix(header, constant.BearerPrefix)
			}
		}
		if token == "" {
			return c.Next()
		}

		subject, err := cfg.Tokens.ExtractSubject(token)
		if err != nil || subject == "" {
			return c.Next()
		}

		if _, ok := PrincipalFrom(c); ok {
			return c.Next()
		}

		user, err := cfg.Users.GetByEmail(c.UserContext(), subject)
		if err != nil || user == nil {
			return c.Next()
		}

		claims, err := cfg.Tokens.Validate(token)
		if err != nil || claims.Subject != user.Email {
			return c.Next()
		}

		c.Locals(principalKey, &Principal{
			User:        user,
			Authorities: user.Role.Authorities(),
		})

		return c.Next()
	}
}
