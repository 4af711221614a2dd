package controller

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/middleware"
	"realty_backend/internal/service"
)

// currentUser returns the identity placed in Locals by the auth middleware.
func currentUser(c *fiber.Ctx) (service.Identity, error) {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		return service.Identity{}, service.Unauthorized("Authentication required")
	}
	return id, nil
}

// parseJSON decodes the body into out, treating an empty body as "{}".
func parseJSON(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return service.Validationf("Invalid input")
	}
	return nil
}
