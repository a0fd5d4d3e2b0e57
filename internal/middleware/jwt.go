package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/auth"
)

// TokenParser verifies access tokens and returns their claims.
type TokenParser interface {
	Parse(token string) (auth.Claims, error)
}

// JWTAuth validates bearer tokens and stashes the caller's identity in locals.
func JWTAuth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireRole rejects callers whose token does not carry the given role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if got, _ := c.Locals("role").(string); got != role {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
