// Package middleware provides HTTP middleware for authentication and
// role-based authorization on the JSON API.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequired ensures the request carries a valid session.
//
// It loads the session from the store and rejects the request with a
// JSON 401 when no user is logged in. On success it copies the user's
// identity into the request locals for downstream handlers.
//
// Context Locals Set:
//   - user_id: the authenticated user's ID (int)
//   - user_role: the user's role (string)
//   - user_name: the user's display name (string)
//
// Parameters:
//   - store: session store backing the auth cookie
//
// Returns:
//   - fiber.Handler: middleware for app.Use() or route groups
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return unauthorized(c)
		}

		userID := sess.Get("user_id")
		if userID == nil {
			return unauthorized(c)
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", sess.Get("user_role"))
		c.Locals("user_name", sess.Get("user_name"))

		return c.Next()
	}
}

// RoleRequired ensures the authenticated user holds one of the given
// roles. It must be chained after AuthRequired, which sets user_role.
//
// Parameters:
//   - roles: accepted roles; any match lets the request through
//
// Returns:
//   - fiber.Handler: middleware returning a JSON 403 on role mismatch
//
// Example:
//
//	staff := api.Group("/applications",
//	    middleware.AuthRequired(store),
//	    middleware.RoleRequired(models.RoleAdmin, models.RoleOperator, models.RoleStaff))
func RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient role",
		})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "authentication required",
	})
}

// ActorID returns the authenticated user's ID from the request locals.
// Zero means the request never passed AuthRequired.
func ActorID(c *fiber.Ctx) int {
	id, _ := c.Locals("user_id").(int)
	return id
}

// ActorRole returns the authenticated user's role from the request locals.
func ActorRole(c *fiber.Ctx) string {
	role, _ := c.Locals("user_role").(string)
	return role
}
