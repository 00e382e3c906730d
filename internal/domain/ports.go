package domain

import (
	"context"

	"github.com/google/uuid"
)

// QuoteStore persists quotes and their items. Every item mutation recomputes
// and stores the owning quote's total in the same transaction.
type QuoteStore interface {
	// GetOrCreateQuote returns the quote for (sessionID, categoryID), creating
	// a draft with a zero total if none exists. Safe under concurrent calls.
	GetOrCreateQuote(ctx context.Context, sessionID, categoryID string, customerEmail *string) (*Quote, error)
	GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error)
	// GetQuoteBySession returns the oldest quote of the session or ErrQuoteNotFound.
	GetQuoteBySession(ctx context.Context, sessionID string) (*Quote, error)
	AddItem(ctx context.Context, quoteID, productID uuid.UUID, quantity int) (*QuoteItem, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) (*Quote, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*QuoteItem, error)
	UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status QuoteStatus) (*Quote, error)
}

type CatalogStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]Product, error)
	UpsertCategory(ctx context.Context, c Category) error
	UpsertPricelist(ctx context.Context, p Pricelist) error
	UpsertProduct(ctx context.Context, p Product) error
}

type TranscriptStore interface {
	AppendMessage(ctx context.Context, msg *ChatMessage) error
	// StartTranscript stores first only when the session has no messages yet.
	StartTranscript(ctx context.Context, first *ChatMessage) (bool, error)
	ListMessages(ctx context.Context, sessionID string) ([]ChatMessage, error)
}

type Store interface {
	QuoteStore
	CatalogStore
	TranscriptStore
	Ping(ctx context.Context) error
	Close()
}

// ReplyStream yields incremental assistant text. Recv returns io.EOF once the
// reply is complete.
type ReplyStream interface {
	Recv() (string, error)
	Close() error
}

type ChatProvider interface {
	StreamReply(ctx context.Context, categoryID string, history []ChatMessage, message string) (ReplyStream, error)
}

type Recommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error)
}
