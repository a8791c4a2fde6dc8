package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-service/internal/domain"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// SessionCookie is the cookie carrying the session JWT.
const SessionCookie = "jwt"

// Principal represents the authenticated caller as embedded in the session
// token at login time.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   domain.Role
}

// SessionMiddleware validates the session cookie and loads the principal.
type SessionMiddleware struct {
	tokens *TokenManager
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens}
}

// RequireSession enforces authentication for protected routes. The token is
// trusted on signature and expiry alone; no store lookup per request.
func (m *SessionMiddleware) RequireSession(c *fiber.Ctx) error {
	token := c.Cookies(SessionCookie)
	if token == "" {
		return apperrors.NewPermissionDenied("you must be logged in to perform this action")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewPermissionDenied("you must be logged in to perform this action")
	}

	c.Locals(principalKey, &Principal{
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	})
	return c.Next()
}

// RequireLoggedOut rejects callers that already hold a valid session.
func (m *SessionMiddleware) RequireLoggedOut(c *fiber.Ctx) error {
	token := c.Cookies(SessionCookie)
	if token == "" {
		return c.Next()
	}
	if _, err := m.tokens.ParseToken(token); err != nil {
		// stale or tampered cookie, treat as logged out
		return c.Next()
	}
	return apperrors.NewPermissionDenied("you are already logged in")
}

// SetSessionCookie stores the signed token as an httpOnly cookie.
func SetSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
