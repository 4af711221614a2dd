package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"realty_backend/internal/service"
)

const msgInternal = "Something went wrong!"

// ErrorHandler renders every error returned by a handler as {"error": msg}.
// Only *service.Error and *fiber.Error messages reach the client.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var svcErr *service.Error
		if errors.As(err, &svcErr) && svcErr.Kind != service.KindInternal {
			if svcErr.Kind == service.KindUpstream {
				log.Error("upstream failure",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(svcErr.Status()).JSON(fiber.Map{"error": svcErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		log.Error("unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
	}
}
