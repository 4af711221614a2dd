package middleware

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/model"
	"realty_backend/internal/service"
)

// RestrictTo lets only the given roles through. It must run after
// AuthMiddleware.
func RestrictTo(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentUser(c)
		if !ok {
			return service.Unauthorized("You are not logged in. Please log in to get access.")
		}
		if err := service.RequireRole(id, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}
