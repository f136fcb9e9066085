// Package middleware provides HTTP middleware functions for authentication and authorization.
// These middleware functions are used to protect routes and enforce role-based access control.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequired is a middleware that ensures the user is authenticated.
// It checks for a valid session and user_id, redirecting to login if not found.
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (int)
//   - user_role: The user's role ("admin" or "staff")
//   - user_name: The user's display name (string)
//   - user_email: The user's email address (string)
//
// Example:
//
//	admin := app.Group("/admin", middleware.AuthRequired(store))
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect("/login")
		}

		userID := sess.Get("user_id")
		if userID == nil {
			return c.Redirect("/login")
		}

		// These locals are available in all downstream handlers.
		c.Locals("user_id", userID)
		c.Locals("user_role", sess.Get("user_role"))
		c.Locals("user_name", sess.Get("user_name"))
		c.Locals("user_email", sess.Get("user_email"))

		return c.Next()
	}
}

// AdminOnly is a middleware that ensures the user has admin privileges.
// Must be chained after AuthRequired, as it depends on user_role being set
// in the context. Returns 403 Forbidden for non-admin users.
//
// Example:
//
//	admin := app.Group("/admin",
//	    middleware.AuthRequired(store),
//	    middleware.AdminOnly())
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Locals("user_role")

		if role != "admin" {
			return c.Status(fiber.StatusForbidden).SendString("Access denied: Admin only")
		}

		return c.Next()
	}
}
