package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	avquote "github.com/set-night/avquote"
	"github.com/set-night/avquote/internal/domain"
	"github.com/shopspring/decimal"
)

// openTestStore connects to TEST_DATABASE_URL and applies migrations.
func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	migrations, err := fs.Sub(avquote.MigrationsFS, "migrations")
	if err != nil {
		t.Fatalf("migrations fs: %v", err)
	}
	if err := RunMigrations(url, migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := NewPool(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	s := NewPostgresStore(pool)
	t.Cleanup(s.Close)

	for _, c := range domain.Categories {
		if err := s.UpsertCategory(ctx, c); err != nil {
			t.Fatalf("upsert category: %v", err)
		}
	}
	return s
}

func seed(t *testing.T, s *PostgresStore, name string, price string) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:          uuid.New(),
		Name:        name,
		CategoryID:  "business",
		RetailPrice: decimal.RequireFromString(price),
		IsActive:    true,
	}
	if err := s.UpsertProduct(context.Background(), p); err != nil {
		t.Fatalf("upsert product: %v", err)
	}
	return p
}

func TestPostgresQuoteTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := seed(t, s, "Conference Camera", "100.00")
	b := seed(t, s, "Table Microphone", "50.00")

	q, err := s.GetOrCreateQuote(ctx, uuid.NewString(), "business", nil)
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	itemA, err := s.AddItem(ctx, q.ID, a.ID, 1)
	if err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := s.AddItem(ctx, q.ID, b.ID, 2); err != nil {
		t.Fatalf("add B: %v", err)
	}
	check := func(want string) {
		t.Helper()
		got, err := s.GetQuote(ctx, q.ID)
		if err != nil {
			t.Fatalf("get quote: %v", err)
		}
		if !got.TotalAmount.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("total = %s, want %s", got.TotalAmount, want)
		}
		if !got.TotalAmount.Equal(got.ItemsTotal()) {
			t.Fatalf("total %s disagrees with items %s", got.TotalAmount, got.ItemsTotal())
		}
	}
	check("200")

	updated, err := s.UpdateItemQuantity(ctx, itemA.ID, 3)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 3 || updated.Product == nil || updated.Product.Name != "Conference Camera" {
		t.Fatalf("updated item = %+v", updated)
	}
	check("400")

	if _, err := s.RemoveItem(ctx, itemA.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	check("100")

	if _, err := s.RemoveItem(ctx, itemA.ID); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("second remove err = %v", err)
	}
	if _, err := s.AddItem(ctx, q.ID, uuid.New(), 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("unknown product err = %v", err)
	}
	if _, err := s.AddItem(ctx, uuid.New(), a.ID, 1); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Fatalf("unknown quote err = %v", err)
	}
}

func TestPostgresGetOrCreateConcurrent(t *testing.T) {
	s := openTestStore(t)
	session := uuid.NewString()

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 16)
	errs := make([]error, len(ids))
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := s.GetOrCreateQuote(context.Background(), session, "gym", nil)
			errs[i] = err
			if err == nil {
				ids[i] = q.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("call %d got quote %s, want %s", i, ids[i], ids[0])
		}
	}
}

func TestPostgresTranscript(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	session := uuid.NewString()

	first := &domain.ChatMessage{
		SessionID:  session,
		CategoryID: "club",
		Role:       domain.RoleAssistant,
		Content:    "welcome",
		IsSystem:   true,
	}
	started, err := s.StartTranscript(ctx, first)
	if err != nil || !started {
		t.Fatalf("start = %v, %v", started, err)
	}
	again := *first
	again.ID = uuid.Nil
	if started, err := s.StartTranscript(ctx, &again); err != nil || started {
		t.Fatalf("second start = %v, %v", started, err)
	}

	reply := &domain.ChatMessage{
		SessionID:  session,
		CategoryID: "club",
		Role:       domain.RoleAssistant,
		Content:    "try this",
		Products: []domain.Recommendation{{
			ID:       uuid.New(),
			Name:     "Subwoofer",
			Price:    decimal.RequireFromString("899.50"),
			Priority: domain.PriorityHigh,
		}},
	}
	if err := s.AppendMessage(ctx, reply); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := s.ListMessages(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "welcome" || !msgs[0].IsSystem {
		t.Fatalf("messages = %+v", msgs)
	}
	if len(msgs[1].Products) != 1 || !msgs[1].Products[0].Price.Equal(decimal.RequireFromString("899.50")) {
		t.Fatalf("products = %+v", msgs[1].Products)
	}
}
