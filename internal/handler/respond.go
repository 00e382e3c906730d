package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
)

func success(c *fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(body)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// respondError maps service errors onto the response envelope.
func respondError(c *fiber.Ctx, err error, op string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return fail(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrCategoryNotFound):
		return fail(c, fiber.StatusBadRequest, "Unknown category")
	case domain.IsNotFound(err):
		return fail(c, fiber.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, domain.ErrReplyInFlight):
		return fail(c, fiber.StatusConflict, "A reply is already in progress for this session")
	}
	slog.Error(op, "error", err, "path", c.Path())
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuoteNotFound):
		return "Quote not found"
	case errors.Is(err, domain.ErrItemNotFound):
		return "Quote item not found"
	case errors.Is(err, domain.ErrProductNotFound):
		return "Product not found"
	}
	return "Not found"
}

func parseID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(field + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("Invalid " + field)
	}
	return id, nil
}
