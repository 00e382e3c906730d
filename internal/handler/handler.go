package handler

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/metrics"
	"github.com/set-night/avquote/internal/service"
)

// Handler holds all dependencies needed by the HTTP handlers.
type Handler struct {
	store           domain.Store
	catalog         *service.CatalogService
	quotes          *service.QuoteService
	transcripts     *service.TranscriptService
	recommendations domain.Recommender
	provider        domain.ChatProvider
	replies         *service.ReplyService
	metrics         *metrics.Metrics
	metricsHandler  fiber.Handler
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Store           domain.Store
	Catalog         *service.CatalogService
	Quotes          *service.QuoteService
	Transcripts     *service.TranscriptService
	Recommendations domain.Recommender
	Provider        domain.ChatProvider
	Replies         *service.ReplyService
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		store:           deps.Store,
		catalog:         deps.Catalog,
		quotes:          deps.Quotes,
		transcripts:     deps.Transcripts,
		recommendations: deps.Recommendations,
		provider:        deps.Provider,
		replies:         deps.Replies,
		metrics:         deps.Metrics,
		metricsHandler:  adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/health", h.Health)
	r.Get("/metrics", h.metricsHandler)

	r.Get("/categories", h.ListCategories)
	r.Get("/products", h.ListProducts)
	r.Post("/products/recommendations", h.Recommend)

	quotes := r.Group("/quotes")
	quotes.Post("/", h.CreateQuote)
	quotes.Get("/", h.GetQuote)
	quotes.Post("/items", h.AddQuoteItem)
	quotes.Delete("/items", h.RemoveQuoteItem)
	quotes.Patch("/items", h.UpdateQuoteItem)
	quotes.Patch("/:id/status", h.UpdateQuoteStatus)

	chat := r.Group("/chat")
	chat.Post("/sessions", h.StartSession)
	chat.Get("/sessions", h.ListMessages)
	chat.Post("/sessions/:sessionId/reply", h.Reply)
	chat.Post("/messages", h.AppendMessage)
	chat.Get("/messages", h.ListMessages)
	chat.Post("/consultation", h.Consultation)
}
