package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/service"
)

const userKey = "user"

// Authenticator resolves a bearer token to a live user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (service.Identity, error)
}

// AuthMiddleware rejects requests without a valid bearer token for an
// existing user and stores the caller's identity in Locals("user").
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.Authenticate(c.UserContext(), bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			return err
		}
		c.Locals(userKey, id)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (service.Identity, bool) {
	id, ok := c.Locals(userKey).(service.Identity)
	return id, ok
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
