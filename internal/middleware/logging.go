package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logging returns middleware that logs each request with its status and duration.
func Logging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		level := slog.LevelDebug
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.UserContext(), level, "request processed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"ip", c.IP(),
			"duration", time.Since(start),
		)
		return err
	}
}
