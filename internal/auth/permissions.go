package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// RequirePermission ensures the principal holds every listed permission.
func RequirePermission(required ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("Un-Authenticated")
		}
		for _, perm := range required {
			if !principal.HasPermission(perm) {
				return apperrors.NewForbidden("insufficient permissions")
			}
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("Un-Authenticated")
		}
		return c.Next()
	}
}
