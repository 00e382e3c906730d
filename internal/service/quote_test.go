package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/shopspring/decimal"
)

func TestQuoteScenario(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	a := env.product(t, "home", "Soundbar", "", 100)
	b := env.product(t, "home", "Subwoofer", "", 50)

	q, err := env.quotes.GetOrCreate(ctx, "sess-1", "home", nil)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	itemA, err := env.quotes.AddItem(ctx, q.ID, a.ID, 1)
	if err != nil {
		t.Fatalf("add A: %v", err)
	}
	itemB, err := env.quotes.AddItem(ctx, q.ID, b.ID, 2)
	if err != nil {
		t.Fatalf("add B: %v", err)
	}

	total := func() decimal.Decimal {
		t.Helper()
		got, err := env.quotes.GetBySession(ctx, "sess-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		return got.TotalAmount
	}

	if got := total(); !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total = %s, want 200", got)
	}
	if _, err := env.quotes.RemoveItem(ctx, itemA.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := total(); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total = %s, want 100", got)
	}
	if _, err := env.quotes.UpdateItemQuantity(ctx, itemB.ID, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := total(); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("total = %s, want 150", got)
	}
}

func TestUpdateQuantityClamps(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	p := env.product(t, "gym", "Amplifier", "", 40)
	q, _ := env.quotes.GetOrCreate(ctx, "sess-1", "gym", nil)
	item, _ := env.quotes.AddItem(ctx, q.ID, p.ID, 2)

	for _, tc := range []struct{ in, want int }{{0, 1}, {-5, 1}, {config.MaxItemQuantity + 1, config.MaxItemQuantity}} {
		got, err := env.quotes.UpdateItemQuantity(ctx, item.ID, tc.in)
		if err != nil {
			t.Fatalf("update %d: %v", tc.in, err)
		}
		if got.Quantity != tc.want {
			t.Errorf("quantity(%d) = %d, want %d", tc.in, got.Quantity, tc.want)
		}
	}
}

func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	p := env.product(t, "home", "Projector", "", 500)
	q, _ := env.quotes.GetOrCreate(ctx, "sess-1", "home", nil)

	var verr *domain.ValidationError
	if _, err := env.quotes.AddItem(ctx, q.ID, p.ID, 0); !errors.As(err, &verr) {
		t.Fatalf("zero quantity err = %v", err)
	}
	if _, err := env.quotes.AddItem(ctx, uuid.Nil, p.ID, 1); !errors.As(err, &verr) {
		t.Fatalf("nil quote err = %v", err)
	}
	if _, err := env.quotes.AddItem(ctx, q.ID, uuid.New(), 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("unknown product err = %v", err)
	}
}

func TestGetOrCreateValidation(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	var verr *domain.ValidationError
	if _, err := env.quotes.GetOrCreate(ctx, "", "home", nil); !errors.As(err, &verr) || verr.Message != "Session ID and category ID are required" {
		t.Fatalf("err = %v", err)
	}
	if _, err := env.quotes.GetOrCreate(ctx, "sess", "bowling", nil); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("err = %v", err)
	}

	email := "a@example.com"
	first, _ := env.quotes.GetOrCreate(ctx, "sess", "home", &email)
	second, _ := env.quotes.GetOrCreate(ctx, "sess", "home", nil)
	if first.ID != second.ID {
		t.Fatalf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if second.CustomerEmail == nil || *second.CustomerEmail != email {
		t.Fatalf("email = %v", second.CustomerEmail)
	}
}

func TestGetBySessionMissing(t *testing.T) {
	q, err := setup(t).quotes.GetBySession(context.Background(), "nobody")
	if err != nil || q != nil {
		t.Fatalf("got %+v, %v; want nil, nil", q, err)
	}
}

func TestAddItemRecordsConfirmation(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	p := env.product(t, "club", "Line Array", "", 2500)
	q, _ := env.quotes.GetOrCreate(ctx, "sess-1", "club", nil)

	t.Run("no transcript", func(t *testing.T) {
		if _, err := env.quotes.AddItem(ctx, q.ID, p.ID, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		msgs, _ := env.transcripts.List(ctx, "sess-1")
		if len(msgs) != 0 {
			t.Fatalf("messages = %d, want 0", len(msgs))
		}
	})

	t.Run("with transcript", func(t *testing.T) {
		if _, err := env.transcripts.Start(ctx, "sess-1", "club"); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := env.quotes.AddItem(ctx, q.ID, p.ID, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		msgs, _ := env.transcripts.List(ctx, "sess-1")
		if len(msgs) != 2 {
			t.Fatalf("messages = %d, want 2", len(msgs))
		}
		last := msgs[1]
		if !strings.Contains(last.Content, `"Line Array"`) || !last.IsSystem {
			t.Fatalf("confirmation = %+v", last)
		}
	})
}

func TestUpdateStatusNotifies(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	q, _ := env.quotes.GetOrCreate(ctx, "sess-1", "business", nil)

	if _, err := env.quotes.UpdateStatus(ctx, q.ID, "shipped"); err == nil {
		t.Fatal("unknown status accepted")
	}
	got, err := env.quotes.UpdateStatus(ctx, q.ID, domain.QuoteStatusPending)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != domain.QuoteStatusPending {
		t.Fatalf("status = %s", got.Status)
	}
	if len(env.notifier.quotes) != 1 {
		t.Fatalf("notifications = %d", len(env.notifier.quotes))
	}
	if _, err := env.quotes.UpdateStatus(ctx, uuid.New(), domain.QuoteStatusPending); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Fatalf("err = %v", err)
	}
}
