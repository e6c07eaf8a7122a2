package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("path", c.Path()),
					slog.String("method", c.Method()),
				)

				err = c.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
					Error: ErrorDetail{Code: domain.ErrInternal.Code, Message: domain.ErrInternal.Message},
				})
			}
		}()
		return c.Next()
	}
}
