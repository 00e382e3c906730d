package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/set-night/avquote/internal/domain"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "degraded",
			"store":     err.Error(),
			"timestamp": time.Now(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"store":     "ok",
		"timestamp": time.Now(),
	})
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	return success(c, fiber.Map{"categories": h.catalog.Categories()})
}

func (h *Handler) ListProducts(c *fiber.Ctx) error {
	categoryID := c.Query("categoryId")
	if categoryID == "" {
		return fail(c, fiber.StatusBadRequest, "Category ID is required")
	}
	products, err := h.catalog.ListProducts(c.UserContext(), categoryID)
	if err != nil {
		return respondError(c, err, "list products")
	}
	if products == nil {
		products = []domain.Product{}
	}
	return success(c, fiber.Map{"products": products})
}

type recommendRequest struct {
	CategoryID          string `json:"categoryId"`
	ConversationContext string `json:"conversationContext"`
	UserRequirements    string `json:"userRequirements"`
}

func (h *Handler) Recommend(c *fiber.Ctx) error {
	var req recommendRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.CategoryID == "" || req.ConversationContext == "" {
		return fail(c, fiber.StatusBadRequest, "Category ID and conversation context are required")
	}

	res, err := h.recommendations.Recommend(c.UserContext(), domain.RecommendationRequest{
		CategoryID:          req.CategoryID,
		ConversationContext: req.ConversationContext,
		UserRequirements:    req.UserRequirements,
	})
	if err != nil {
		return respondError(c, err, "recommend products")
	}
	products := res.Products
	if products == nil {
		products = []domain.Recommendation{}
	}
	return success(c, fiber.Map{
		"products":    products,
		"explanation": res.Explanation,
	})
}
