package users

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AuthUserKey is the locals key the session middleware stores the
// resolved user under.
const AuthUserKey = "authenticatedUser"

// TokenAuthentication resolves an optional Bearer session token and
// stashes the owning user in locals. It never rejects the request:
// handlers that require a caller enforce ownership themselves so an
// anonymous PUT and a cross-user PUT fail the same way.
func TokenAuthentication(auther *Auther) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return c.Next()
		}

		if user, err := auther.SessionUser(c.UserContext(), raw); err == nil {
			c.Locals(AuthUserKey, user)
		}

		return c.Next()
	}
}

// AuthenticatedUser returns the session user, or nil for anonymous
// requests.
func AuthenticatedUser(c *fiber.Ctx) *User {
	user, _ := c.Locals(AuthUserKey).(*User)
	return user
}
