package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const principalKey = "auth_principal"

const bearerScheme = "Bearer"

// Principal represents the authenticated caller.
type Principal struct {
	Claims domain.TokenClaims
}

// HasPermission reports whether the caller's token grants permission.
func (p *Principal) HasPermission(permission string) bool {
	for _, granted := range p.Claims.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// TokenVerifier validates a signed token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*domain.TokenClaims, error)
}

// AuthMiddleware validates bearer access tokens and loads principals.
type AuthMiddleware struct {
	tokens TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// ParseBearer extracts the token from a "Bearer <token>" header. The scheme is
// case-sensitive and exactly one space must separate it from the token.
func ParseBearer(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme {
		return "", false
	}
	return parts[1], true
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := ParseBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthenticated("Un-Authenticated")
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return TokenError(err)
	}

	c.Locals(principalKey, &Principal{Claims: *claims})
	return c.Next()
}

// TokenError maps a verification failure to its domain error kind.
func TokenError(err error) error {
	if errors.Is(err, ErrTokenExpired) {
		return apperrors.NewTokenExpired(err)
	}
	return apperrors.NewTokenInvalid(err)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
