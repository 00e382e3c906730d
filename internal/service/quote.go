package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

// QuoteNotifier is told about quotes that left draft.
type QuoteNotifier interface {
	QuoteStatusChanged(ctx context.Context, quote *domain.Quote) error
}

type QuoteService struct {
	store       domain.QuoteStore
	catalog     *CatalogService
	transcripts *TranscriptService
	notifier    QuoteNotifier
}

func NewQuoteService(store domain.QuoteStore, catalog *CatalogService, transcripts *TranscriptService, notifier QuoteNotifier) *QuoteService {
	return &QuoteService{store: store, catalog: catalog, transcripts: transcripts, notifier: notifier}
}

func (s *QuoteService) GetOrCreate(ctx context.Context, sessionID, categoryID string, customerEmail *string) (*domain.Quote, error) {
	sessionID = strings.TrimSpace(sessionID)
	categoryID = strings.TrimSpace(categoryID)
	if sessionID == "" || categoryID == "" {
		return nil, domain.NewValidationError("Session ID and category ID are required")
	}
	if _, err := s.catalog.Category(categoryID); err != nil {
		return nil, err
	}
	if customerEmail != nil && strings.TrimSpace(*customerEmail) == "" {
		customerEmail = nil
	}
	return s.store.GetOrCreateQuote(ctx, sessionID, categoryID, customerEmail)
}

// GetBySession returns the session's quote, or nil when none was created yet.
func (s *QuoteService) GetBySession(ctx context.Context, sessionID string) (*domain.Quote, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.NewValidationError("Session ID is required")
	}
	q, err := s.store.GetQuoteBySession(ctx, sessionID)
	if errors.Is(err, domain.ErrQuoteNotFound) {
		return nil, nil
	}
	return q, err
}

func (s *QuoteService) Get(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	return s.store.GetQuote(ctx, id)
}

// AddItem adds quantity units of a product at its current retail price and
// records a confirmation in the session transcript.
func (s *QuoteService) AddItem(ctx context.Context, quoteID, productID uuid.UUID, quantity int) (*domain.QuoteItem, error) {
	if quoteID == uuid.Nil || productID == uuid.Nil {
		return nil, domain.NewValidationError("Quote ID and product ID are required")
	}
	if quantity < config.MinItemQuantity {
		return nil, domain.NewValidationError(fmt.Sprintf("Quantity must be at least %d", config.MinItemQuantity))
	}
	if quantity > config.MaxItemQuantity {
		return nil, domain.NewValidationError(fmt.Sprintf("Quantity must not exceed %d", config.MaxItemQuantity))
	}

	item, err := s.store.AddItem(ctx, quoteID, productID, quantity)
	if err != nil {
		return nil, err
	}

	if s.transcripts != nil && item.Product != nil {
		s.confirm(ctx, quoteID, item.Product.Name)
	}
	return item, nil
}

func (s *QuoteService) confirm(ctx context.Context, quoteID uuid.UUID, productName string) {
	quote, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		slog.Warn("load quote for confirmation", "quote_id", quoteID, "error", err)
		return
	}
	// only sessions chatting through the server keep a transcript
	history, err := s.transcripts.List(ctx, quote.SessionID)
	if err != nil || len(history) == 0 {
		return
	}
	if _, err := s.transcripts.Note(ctx, quote.SessionID, quote.CategoryID, config.AddedToQuoteMessage(productName)); err != nil {
		slog.Warn("quote confirmation not recorded", "quote_id", quoteID, "error", err)
	}
}

func (s *QuoteService) RemoveItem(ctx context.Context, itemID uuid.UUID) (*domain.Quote, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("Item ID is required")
	}
	return s.store.RemoveItem(ctx, itemID)
}

// UpdateItemQuantity sets a line's quantity, clamped to [MinItemQuantity, MaxItemQuantity].
func (s *QuoteService) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.QuoteItem, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("Item ID is required")
	}
	quantity = min(max(quantity, config.MinItemQuantity), config.MaxItemQuantity)
	return s.store.UpdateItemQuantity(ctx, itemID, quantity)
}

func (s *QuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.Quote, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("Unknown status %q", status))
	}
	quote, err := s.store.UpdateQuoteStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.QuoteStatusChanged(ctx, quote); err != nil {
			slog.Warn("quote notification failed", "quote_id", id, "error", err)
		}
	}
	return quote, nil
}
