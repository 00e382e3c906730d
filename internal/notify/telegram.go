package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/avquote/internal/domain"
)

const (
	maxMessageLen = 4096
	sendTimeout   = 10 * time.Second
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram posts quote updates to a sales chat, optionally into a forum topic.
type Telegram struct {
	sender  messageSender
	chatID  int64
	topicID int
}

func NewTelegram(token string, chatID int64, topicID int) (*Telegram, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{sender: b, chatID: chatID, topicID: topicID}, nil
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if len([]rune(text)) > maxMessageLen {
		text = string([]rune(text)[:maxMessageLen-20]) + "\n\n\\.\\.\\. \\(truncated\\)"
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          t.chatID,
		Text:            text,
		ParseMode:       models.ParseModeMarkdown,
		MessageThreadID: t.topicID,
	})
	return err
}

func (t *Telegram) QuoteStatusChanged(ctx context.Context, q *domain.Quote) error {
	if err := t.send(ctx, FormatQuote(q)); err != nil {
		slog.Error("failed to send quote notification", "quote_id", q.ID, "error", err)
		return err
	}
	return nil
}

// FormatQuote renders a quote as a MarkdownV2 message.
func FormatQuote(q *domain.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Quote %s*\n\n", bot.EscapeMarkdown(string(q.Status)))
	fmt.Fprintf(&b, "*ID:* `%s`\n", q.ID)
	fmt.Fprintf(&b, "*Category:* %s\n", bot.EscapeMarkdown(q.CategoryID))
	if q.CustomerEmail != nil {
		fmt.Fprintf(&b, "*Customer:* %s\n", bot.EscapeMarkdown(*q.CustomerEmail))
	}
	if len(q.Items) > 0 {
		b.WriteString("\n")
		for _, it := range q.Items {
			name := it.ProductID.String()
			if it.Product != nil {
				name = it.Product.Name
			}
			fmt.Fprintf(&b, "• %s × %d \\= $%s\n", bot.EscapeMarkdown(name), it.Quantity, bot.EscapeMarkdown(it.TotalPrice.StringFixed(2)))
		}
	}
	fmt.Fprintf(&b, "\n*Total:* $%s", bot.EscapeMarkdown(q.TotalAmount.StringFixed(2)))
	return b.String()
}
