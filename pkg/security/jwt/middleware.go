package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalUserID is the c.Locals key holding the authenticated user id.
const LocalUserID = "userId"

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// On success sets user id (subject) into c.Locals(LocalUserID).
func NewAuthMiddleware(parser *Parser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing Authorization header")
		}
		// Support both "Bearer <token>" and "<token>" (no prefix).
		tokenStr := strings.TrimSpace(authHeader)
		if scheme, rest, ok := strings.Cut(tokenStr, " "); ok && strings.EqualFold(scheme, "Bearer") {
			tokenStr = strings.TrimSpace(rest)
		}
		if tokenStr == "" {
			return unauthorized(c, "empty token")
		}
		claims, err := parser.Parse(tokenStr)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}
		c.Locals(LocalUserID, claims.Subject)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": message, "code": "UNAUTHORIZED"})
}
