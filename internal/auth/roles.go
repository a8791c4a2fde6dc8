package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-service/internal/domain"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

// Authorize decides whether a caller holding role may perform an operation
// restricted to the allowed set. Pure function; the route layer translates
// a deny into the transport response.
func Authorize(role domain.Role, allowed []domain.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// RequireRoles gates a route on the caller's role. It runs after session
// verification established the principal; a deny ends the request without
// reaching the wrapped handler.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewPermissionDenied("you must be logged in to perform this action")
		}
		if !Authorize(principal.Role, allowed) {
			return apperrors.NewNotAuthorized("insufficient role")
		}
		return c.Next()
	}
}
