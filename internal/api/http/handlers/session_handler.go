package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-service/internal/api/dto"
	"github.com/spec-kit/member-service/internal/auth"
	"github.com/spec-kit/member-service/internal/config"
	"github.com/spec-kit/member-service/internal/service"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

// SessionHandler exposes login/logout endpoints.
type SessionHandler struct {
	sessions      *service.SessionService
	secureCookies bool
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, appCfg config.AppConfig) *SessionHandler {
	return &SessionHandler{sessions: sessions, secureCookies: appCfg.SecureCookies()}
}

// Login handles POST /users/login. The RequireLoggedOut guard runs first.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidField("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required")
	}

	user, token, exp, err := h.sessions.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookie(c, token, exp, h.secureCookies)
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		User:      dto.NewUserResponse(user),
		ExpiresAt: exp,
	}})
}

// Logout handles POST /users/logout. A missing session is a state violation.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if c.Cookies(auth.SessionCookie) == "" {
		return apperrors.NewPermissionDenied("you must be logged in to perform this action")
	}
	auth.ClearSessionCookie(c, h.secureCookies)
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}
