package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/set-night/avquote/internal/domain"
)

type createQuoteRequest struct {
	SessionID     string  `json:"sessionId"`
	CategoryID    string  `json:"categoryId"`
	CustomerEmail *string `json:"customerEmail"`
}

// CreateQuote returns the session's quote for a category, creating a draft on first use.
func (h *Handler) CreateQuote(c *fiber.Ctx) error {
	var req createQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	quote, err := h.quotes.GetOrCreate(c.UserContext(), req.SessionID, req.CategoryID, req.CustomerEmail)
	if err != nil {
		return respondError(c, err, "create quote")
	}
	return success(c, fiber.Map{"quote": quote})
}

func (h *Handler) GetQuote(c *fiber.Ctx) error {
	quote, err := h.quotes.GetBySession(c.UserContext(), c.Query("sessionId"))
	if err != nil {
		return respondError(c, err, "get quote")
	}
	// nil renders as null until the session creates a quote
	return success(c, fiber.Map{"quote": quote})
}

type addItemRequest struct {
	QuoteID   string `json:"quoteId"`
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *Handler) AddQuoteItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.QuoteID == "" || req.ProductID == "" {
		return fail(c, fiber.StatusBadRequest, "Quote ID and product ID are required")
	}
	quoteID, err := parseID(req.QuoteID, "quote ID")
	if err != nil {
		return respondError(c, err, "add quote item")
	}
	productID, err := parseID(req.ProductID, "product ID")
	if err != nil {
		return respondError(c, err, "add quote item")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.quotes.AddItem(c.UserContext(), quoteID, productID, quantity)
	if err != nil {
		return respondError(c, err, "add quote item")
	}
	h.mutated("add_item")
	return success(c, fiber.Map{"item": item})
}

func (h *Handler) RemoveQuoteItem(c *fiber.Ctx) error {
	itemID, err := parseID(c.Query("itemId"), "Item ID")
	if err != nil {
		return respondError(c, err, "remove quote item")
	}
	quote, err := h.quotes.RemoveItem(c.UserContext(), itemID)
	if err != nil {
		return respondError(c, err, "remove quote item")
	}
	h.mutated("remove_item")
	return success(c, fiber.Map{"quote": quote})
}

type updateItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) UpdateQuoteItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	itemID, err := parseID(req.ItemID, "Item ID")
	if err != nil {
		return respondError(c, err, "update quote item")
	}
	item, err := h.quotes.UpdateItemQuantity(c.UserContext(), itemID, req.Quantity)
	if err != nil {
		return respondError(c, err, "update quote item")
	}
	h.mutated("update_quantity")
	return success(c, fiber.Map{"item": item})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateQuoteStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	quoteID, err := parseID(c.Params("id"), "quote ID")
	if err != nil {
		return respondError(c, err, "update quote status")
	}
	quote, err := h.quotes.UpdateStatus(c.UserContext(), quoteID, domain.QuoteStatus(req.Status))
	if err != nil {
		return respondError(c, err, "update quote status")
	}
	h.mutated("update_status")
	return success(c, fiber.Map{"quote": quote})
}

func (h *Handler) mutated(op string) {
	if h.metrics != nil {
		h.metrics.QuoteMutationsTotal.WithLabelValues(op).Inc()
	}
}
