package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hendisantika/jwt-auth-service/config"
	"github.com/hendisantika/jwt-auth-service/internal/auth/dto"
	"github.com/hendisantika/jwt-auth-service/internal/auth/middleware"
	"github.com/hendisantika/jwt-auth-service/internal/auth/service"
	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
)

type AuthHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		cfg:         cfg,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := h.validate.Struct(input); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrEmailAlreadyInUse):
			return writeError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, autherror.ErrUnknownRole):
			return writeError(c, fiber.StatusBadRequest, err.Error())
		default:
			return writeError(c, fiber.StatusInternalServerError, "registration failed")
		}
	}

	h.setAuthCookies(c, resp)

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := h.validate.Struct(input); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	input.IPAddress = c.IP()

	resp, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrTooManyLoginAttempts):
			return writeError(c, fiber.StatusTooManyRequests, err.Error())
		case errors.Is(err, autherror.ErrInvalidCredentials):
			return writeError(c, fiber.StatusUnauthorized, err.Error())
		default:
			return writeError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	h.setAuthCookies(c, resp)

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := h.refreshTokenFromRequest(c)
	if token == "" {
		return writeError(c, fiber.StatusUnauthorized, "missing refresh token")
	}

	resp, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, autherror.ErrInvalidRefreshToken) {
			return writeError(c, fiber.StatusUnauthorized, autherror.ErrInvalidRefreshToken.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, "refresh failed")
	}

	h.setAuthCookies(c, resp)

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := h.refreshTokenFromRequest(c)
	if token != "" {
		if err := h.authService.Logout(c.UserContext(), token); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "logout failed")
		}
	}

	h.clearAuthCookies(c)

	return c.SendStatus(fiber.StatusNoContent)
}

// Hello is the secured sample endpoint; it requires an authenticated principal.
func (h *AuthHandler) Hello(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Hello, " + principal.User.Email,
		"roles":   principal.Authorities,
	})
}

// refreshTokenFromRequest prefers the body field and falls back to the
// configured refresh cookie.
func (h *AuthHandler) refreshTokenFromRequest(c *fiber.Ctx) string {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err == nil && input.RefreshToken != "" {
		return input.RefreshToken
	}

	return c.Cookies(h.cfg.RefreshCookieName)
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, resp *dto.AuthenticationResponse) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.AccessCookieName,
		Value:    resp.AccessToken,
		Expires:  now.Add(h.cfg.AccessTokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.RefreshCookieName,
		Value:    resp.RefreshToken,
		Expires:  now.Add(h.cfg.RefreshTokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/api/v1/auth",
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: h.cfg.AccessCookieName, Value: "", Expires: expired, HTTPOnly: true, Path: "/"})
	c.Cookie(&fiber.Cookie{Name: h.cfg.RefreshCookieName, Value: "", Expires: expired, HTTPOnly: true, Path: "/api/v1/auth"})
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Timestamp: time.Now(),
		Message:   message,
		Path:      c.Path(),
	})
}
