package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/repository/memory"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	store       *memory.Store
	catalog     *CatalogService
	transcripts *TranscriptService
	quotes      *QuoteService
	notifier    *recordingNotifier
}

type recordingNotifier struct {
	quotes []*domain.Quote
}

func (n *recordingNotifier) QuoteStatusChanged(ctx context.Context, q *domain.Quote) error {
	n.quotes = append(n.quotes, q)
	return nil
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	catalog := NewCatalogService(store)
	transcripts := NewTranscriptService(store)
	notifier := &recordingNotifier{}
	return &testEnv{
		store:       store,
		catalog:     catalog,
		transcripts: transcripts,
		quotes:      NewQuoteService(store, catalog, transcripts, notifier),
		notifier:    notifier,
	}
}

func (e *testEnv) product(t *testing.T, category, name, description string, price int64) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CategoryID:  category,
		RetailPrice: decimal.NewFromInt(price),
		IsActive:    true,
	}
	if err := e.catalog.Import(context.Background(), nil, nil, []domain.Product{p}); err != nil {
		t.Fatalf("import product: %v", err)
	}
	return p
}
