package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
	"github.com/shopspring/decimal"
)

// Store implements domain.Store in process memory. A single mutex serializes
// writers, which gives every quote mutation the same atomicity the Postgres
// store gets from its row locks.
type Store struct {
	mu sync.RWMutex

	categories map[string]domain.Category
	pricelists map[uuid.UUID]domain.Pricelist
	products   map[uuid.UUID]domain.Product

	quotes    map[uuid.UUID]*domain.Quote
	quoteKeys map[string]uuid.UUID
	items     map[uuid.UUID]*domain.QuoteItem
	// item ids per quote in insertion order
	quoteItems map[uuid.UUID][]uuid.UUID

	messages map[string][]domain.ChatMessage

	now func() time.Time
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		categories: make(map[string]domain.Category),
		pricelists: make(map[uuid.UUID]domain.Pricelist),
		products:   make(map[uuid.UUID]domain.Product),
		quotes:     make(map[uuid.UUID]*domain.Quote),
		quoteKeys:  make(map[string]uuid.UUID),
		items:      make(map[uuid.UUID]*domain.QuoteItem),
		quoteItems: make(map[uuid.UUID][]uuid.UUID),
		messages:   make(map[string][]domain.ChatMessage),
		now:        time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

func quoteKey(sessionID, categoryID string) string {
	return sessionID + "|" + categoryID
}

func (s *Store) GetOrCreateQuote(ctx context.Context, sessionID, categoryID string, customerEmail *string) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := quoteKey(sessionID, categoryID)
	if id, ok := s.quoteKeys[key]; ok {
		return s.snapshot(id), nil
	}

	now := s.now()
	q := &domain.Quote{
		ID:          uuid.New(),
		SessionID:   sessionID,
		CategoryID:  categoryID,
		Status:      domain.QuoteStatusDraft,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if customerEmail != nil {
		email := *customerEmail
		q.CustomerEmail = &email
	}
	s.quotes[q.ID] = q
	s.quoteKeys[key] = q.ID
	return s.snapshot(q.ID), nil
}

func (s *Store) GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.quotes[id]; !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return s.snapshot(id), nil
}

func (s *Store) GetQuoteBySession(ctx context.Context, sessionID string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *domain.Quote
	for _, q := range s.quotes {
		if q.SessionID != sessionID {
			continue
		}
		if first == nil || q.CreatedAt.Before(first.CreatedAt) {
			first = q
		}
	}
	if first == nil {
		return nil, domain.ErrQuoteNotFound
	}
	return s.snapshot(first.ID), nil
}

// snapshot copies the quote with its items and product details. Callers hold s.mu.
func (s *Store) snapshot(id uuid.UUID) *domain.Quote {
	q := *s.quotes[id]
	q.Items = make([]domain.QuoteItem, 0, len(s.quoteItems[id]))
	for _, itemID := range s.quoteItems[id] {
		q.Items = append(q.Items, s.itemWithProduct(s.items[itemID]))
	}
	return &q
}

func (s *Store) itemWithProduct(it *domain.QuoteItem) domain.QuoteItem {
	out := *it
	if p, ok := s.products[it.ProductID]; ok {
		out.Product = p.Snapshot()
	}
	return out
}

// recalculate stores the quote total from its current items. Callers hold s.mu.
func (s *Store) recalculate(quoteID uuid.UUID) {
	total := decimal.Zero
	for _, itemID := range s.quoteItems[quoteID] {
		total = total.Add(s.items[itemID].TotalPrice)
	}
	q := s.quotes[quoteID]
	q.TotalAmount = total
	q.UpdatedAt = s.now()
}

func (s *Store) AddItem(ctx context.Context, quoteID, productID uuid.UUID, quantity int) (*domain.QuoteItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[quoteID]; !ok {
		return nil, domain.ErrQuoteNotFound
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	it := &domain.QuoteItem{
		ID:         uuid.New(),
		QuoteID:    quoteID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  p.RetailPrice,
		TotalPrice: domain.LineTotal(quantity, p.RetailPrice),
		AddedAt:    s.now(),
	}
	s.items[it.ID] = it
	s.quoteItems[quoteID] = append(s.quoteItems[quoteID], it.ID)
	s.recalculate(quoteID)

	out := s.itemWithProduct(it)
	return &out, nil
}

func (s *Store) RemoveItem(ctx context.Context, itemID uuid.UUID) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	delete(s.items, itemID)

	ids := s.quoteItems[it.QuoteID]
	for i, id := range ids {
		if id == itemID {
			s.quoteItems[it.QuoteID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	s.recalculate(it.QuoteID)
	return s.snapshot(it.QuoteID), nil
}

func (s *Store) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.QuoteItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	it.Quantity = quantity
	it.TotalPrice = domain.LineTotal(quantity, it.UnitPrice)
	s.recalculate(it.QuoteID)

	out := s.itemWithProduct(it)
	return &out, nil
}

func (s *Store) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	if !q.Status.CanTransition(status) {
		return nil, domain.NewValidationError(fmt.Sprintf("Cannot move quote from %s to %s", q.Status, status))
	}
	q.Status = status
	q.UpdatedAt = s.now()
	return s.snapshot(id), nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (s *Store) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Product
	for _, p := range s.products {
		if p.CategoryID == categoryID && p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RetailPrice.Equal(out[j].RetailPrice) {
			return out[i].RetailPrice.LessThan(out[j].RetailPrice)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) UpsertCategory(ctx context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) UpsertPricelist(ctx context.Context, p domain.Pricelist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pricelists[p.ID] = p
	return nil
}

func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.PricelistID != nil {
		if pl, ok := s.pricelists[*p.PricelistID]; ok {
			p.Pricelist = &pl
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(msg)
	return nil
}

func (s *Store) appendLocked(msg *domain.ChatMessage) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
}

func (s *Store) StartTranscript(ctx context.Context, first *domain.ChatMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages[first.SessionID]) > 0 {
		return false, nil
	}
	s.appendLocked(first)
	return true, nil
}

func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
