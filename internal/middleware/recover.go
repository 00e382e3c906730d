package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// Recover returns middleware that turns handler panics into 500 responses.
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic recovered in handler",
					"panic", r,
					"method", c.Method(),
					"path", c.Path(),
					"stack", string(debug.Stack()),
				)
				err = fiber.ErrInternalServerError
			}
		}()
		return c.Next()
	}
}
