package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
	"github.com/shopspring/decimal"
)

type captureSender struct {
	params []*bot.SendMessageParams
	err    error
}

func (c *captureSender) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	c.params = append(c.params, p)
	return &models.Message{}, c.err
}

func testQuote() *domain.Quote {
	email := "owner@cafe.example"
	return &domain.Quote{
		ID:            uuid.New(),
		CategoryID:    "restaurant",
		Status:        domain.QuoteStatusPending,
		TotalAmount:   decimal.RequireFromString("361.50"),
		CustomerEmail: &email,
		Items: []domain.QuoteItem{{
			Quantity:   3,
			TotalPrice: decimal.RequireFromString("361.50"),
			Product:    &domain.ProductSnapshot{Name: "Patio Speaker (pair)"},
		}},
	}
}

func TestQuoteStatusChanged(t *testing.T) {
	sender := &captureSender{}
	n := &Telegram{sender: sender, chatID: -100123, topicID: 7}

	if err := n.QuoteStatusChanged(context.Background(), testQuote()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.params) != 1 {
		t.Fatalf("sent %d messages", len(sender.params))
	}
	p := sender.params[0]
	if p.ChatID != int64(-100123) || p.MessageThreadID != 7 || p.ParseMode != models.ParseModeMarkdown {
		t.Fatalf("params = %+v", p)
	}
	for _, want := range []string{`Patio Speaker \(pair\)`, `361\.50`, `owner@cafe\.example`} {
		if !strings.Contains(p.Text, want) {
			t.Errorf("text missing %q:\n%s", want, p.Text)
		}
	}
}

func TestQuoteStatusChangedError(t *testing.T) {
	n := &Telegram{sender: &captureSender{err: errors.New("forbidden")}, chatID: 1}
	if err := n.QuoteStatusChanged(context.Background(), testQuote()); err == nil {
		t.Fatal("expected error")
	}
}
