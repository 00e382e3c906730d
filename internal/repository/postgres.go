package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/repository/sqlc"
)

// PostgresStore implements domain.Store on top of pgx and the sqlc queries.
type PostgresStore struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

var _ domain.Store = (*PostgresStore)(nil)

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, queries: sqlc.New(db)}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) GetOrCreateQuote(ctx context.Context, sessionID, categoryID string, customerEmail *string) (*domain.Quote, error) {
	// The unique (session_id, category_id) constraint turns concurrent creates into no-ops.
	if err := s.queries.InsertQuoteIfAbsent(ctx, sqlc.InsertQuoteIfAbsentParams{
		ID:            uuid.New(),
		SessionID:     sessionID,
		CategoryID:    categoryID,
		CustomerEmail: customerEmail,
	}); err != nil {
		return nil, fmt.Errorf("insert quote: %w", err)
	}

	row, err := s.queries.GetQuoteBySessionCategory(ctx, sqlc.GetQuoteBySessionCategoryParams{
		SessionID:  sessionID,
		CategoryID: categoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return s.withItems(ctx, s.queries, row)
}

func (s *PostgresStore) GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	row, err := s.queries.GetQuoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return s.withItems(ctx, s.queries, row)
}

func (s *PostgresStore) GetQuoteBySession(ctx context.Context, sessionID string) (*domain.Quote, error) {
	row, err := s.queries.GetFirstQuoteBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get session quote: %w", err)
	}
	return s.withItems(ctx, s.queries, row)
}

func (s *PostgresStore) withItems(ctx context.Context, q *sqlc.Queries, row sqlc.Quote) (*domain.Quote, error) {
	quote := rowToQuote(row)
	rows, err := q.ListQuoteItemsWithProducts(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	for _, r := range rows {
		quote.Items = append(quote.Items, itemRowWithProduct(r))
	}
	return quote, nil
}

// AddItem inserts a line priced at the product's current retail price and
// recomputes the quote total while holding the quote row lock.
func (s *PostgresStore) AddItem(ctx context.Context, quoteID, productID uuid.UUID, quantity int) (*domain.QuoteItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	if _, err := qtx.GetQuoteForUpdate(ctx, quoteID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("lock quote: %w", err)
	}

	product, err := qtx.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	row, err := qtx.CreateQuoteItem(ctx, sqlc.CreateQuoteItemParams{
		ID:         uuid.New(),
		QuoteID:    quoteID,
		ProductID:  productID,
		Quantity:   int32(quantity),
		UnitPrice:  product.RetailPrice,
		TotalPrice: domain.LineTotal(quantity, product.RetailPrice),
	})
	if err != nil {
		return nil, fmt.Errorf("create quote item: %w", err)
	}

	if _, err := qtx.RecalculateQuoteTotal(ctx, quoteID); err != nil {
		return nil, fmt.Errorf("recalculate total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	item := rowToQuoteItem(row)
	p := productRow(product).toDomain()
	item.Product = p.Snapshot()
	return item, nil
}

func (s *PostgresStore) RemoveItem(ctx context.Context, itemID uuid.UUID) (*domain.Quote, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	item, err := qtx.GetQuoteItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get quote item: %w", err)
	}

	if _, err := qtx.GetQuoteForUpdate(ctx, item.QuoteID); err != nil {
		return nil, fmt.Errorf("lock quote: %w", err)
	}

	n, err := qtx.DeleteQuoteItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("delete quote item: %w", err)
	}
	if n == 0 {
		// removed by a concurrent request between the read and the lock
		return nil, domain.ErrItemNotFound
	}

	if _, err := qtx.RecalculateQuoteTotal(ctx, item.QuoteID); err != nil {
		return nil, fmt.Errorf("recalculate total: %w", err)
	}

	row, err := qtx.GetQuoteByID(ctx, item.QuoteID)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	quote, err := s.withItems(ctx, qtx, row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return quote, nil
}

func (s *PostgresStore) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.QuoteItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	current, err := qtx.GetQuoteItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get quote item: %w", err)
	}

	if _, err := qtx.GetQuoteForUpdate(ctx, current.QuoteID); err != nil {
		return nil, fmt.Errorf("lock quote: %w", err)
	}

	row, err := qtx.UpdateQuoteItemQuantity(ctx, sqlc.UpdateQuoteItemQuantityParams{
		ID:       itemID,
		Quantity: int32(quantity),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("update quantity: %w", err)
	}

	if _, err := qtx.RecalculateQuoteTotal(ctx, current.QuoteID); err != nil {
		return nil, fmt.Errorf("recalculate total: %w", err)
	}

	item := rowToQuoteItem(row)
	product, err := qtx.GetProduct(ctx, item.ProductID)
	switch {
	case err == nil:
		p := productRow(product).toDomain()
		item.Product = p.Snapshot()
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.Quote, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	current, err := qtx.GetQuoteForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("lock quote: %w", err)
	}
	if !domain.QuoteStatus(current.Status).CanTransition(status) {
		return nil, domain.NewValidationError(fmt.Sprintf("Cannot move quote from %s to %s", current.Status, status))
	}

	row, err := qtx.UpdateQuoteStatus(ctx, sqlc.UpdateQuoteStatusParams{ID: id, Status: string(status)})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	quote, err := s.withItems(ctx, qtx, row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return quote, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row, err := s.queries.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p := productRow(row).toDomain()
	return &p, nil
}

func (s *PostgresStore) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	rows, err := s.queries.ListActiveProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]domain.Product, len(rows))
	for i, r := range rows {
		products[i] = productRow(r).toDomain()
	}
	return products, nil
}

func (s *PostgresStore) UpsertCategory(ctx context.Context, c domain.Category) error {
	return s.queries.UpsertCategory(ctx, sqlc.UpsertCategoryParams{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
	})
}

func (s *PostgresStore) UpsertPricelist(ctx context.Context, p domain.Pricelist) error {
	return s.queries.UpsertPricelist(ctx, sqlc.UpsertPricelistParams{
		ID:               p.ID,
		Name:             p.Name,
		PriceType:        p.PriceType,
		MarginPercentage: p.MarginPercentage,
	})
}

func (s *PostgresStore) UpsertProduct(ctx context.Context, p domain.Product) error {
	return s.queries.UpsertProduct(ctx, sqlc.UpsertProductParams{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		CategoryID:       p.CategoryID,
		PricelistID:      uuidPtrToNull(p.PricelistID),
		CostPrice:        p.CostPrice,
		RetailPrice:      p.RetailPrice,
		MarkupPercentage: p.MarkupPercentage,
		IsActive:         p.IsActive,
	})
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return s.createMessage(ctx, s.queries, msg)
}

func (s *PostgresStore) createMessage(ctx context.Context, q *sqlc.Queries, msg *domain.ChatMessage) error {
	var products []byte
	if len(msg.Products) > 0 {
		b, err := json.Marshal(msg.Products)
		if err != nil {
			return fmt.Errorf("encode products: %w", err)
		}
		products = b
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	row, err := q.CreateChatMessage(ctx, sqlc.CreateChatMessageParams{
		ID:         msg.ID,
		SessionID:  msg.SessionID,
		CategoryID: msg.CategoryID,
		Role:       string(msg.Role),
		Content:    msg.Content,
		IsSystem:   msg.IsSystem,
		Products:   products,
		CreatedAt:  timeToPgTimestamptz(msg.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	msg.CreatedAt = pgTimestamptzToTime(row.CreatedAt)
	return nil
}

// StartTranscript serializes concurrent starts of one session on an advisory
// lock so the opening message is written at most once.
func (s *PostgresStore) StartTranscript(ctx context.Context, first *domain.ChatMessage) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	if err := qtx.LockSessionTranscript(ctx, first.SessionID); err != nil {
		return false, fmt.Errorf("lock transcript: %w", err)
	}

	count, err := qtx.CountChatMessages(ctx, first.SessionID)
	if err != nil {
		return false, fmt.Errorf("count messages: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := s.createMessage(ctx, qtx, first); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := s.queries.ListChatMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs := make([]domain.ChatMessage, 0, len(rows))
	for _, r := range rows {
		m, err := rowToChatMessage(r)
		if err != nil {
			return nil, fmt.Errorf("decode message %s: %w", r.ID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
