package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusPending, QuoteStatusApproved, QuoteStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a quote in status s may move to next.
// Quotes only ever leave draft; approved and rejected are terminal.
func (s QuoteStatus) CanTransition(next QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return next == QuoteStatusPending || next == QuoteStatusApproved || next == QuoteStatusRejected
	case QuoteStatusPending:
		return next == QuoteStatusApproved || next == QuoteStatusRejected
	}
	return false
}

type Quote struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     string          `json:"session_id"`
	CategoryID    string          `json:"category_id"`
	Status        QuoteStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CustomerEmail *string         `json:"customer_email,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []QuoteItem     `json:"quote_items"`
}

// ItemCount is the number of units across all line items.
func (q *Quote) ItemCount() int {
	n := 0
	for _, it := range q.Items {
		n += it.Quantity
	}
	return n
}

// ItemsTotal sums quantity * unit price over the loaded items.
func (q *Quote) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range q.Items {
		total = total.Add(LineTotal(it.Quantity, it.UnitPrice))
	}
	return total
}

type QuoteItem struct {
	ID         uuid.UUID        `json:"id"`
	QuoteID    uuid.UUID        `json:"quote_id"`
	ProductID  uuid.UUID        `json:"product_id"`
	Quantity   int              `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	AddedAt    time.Time        `json:"added_at"`
	Product    *ProductSnapshot `json:"product,omitempty"`
}

// ProductSnapshot is the product detail attached to a quote item on reads.
type ProductSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	RetailPrice decimal.Decimal `json:"retail_price"`
}

func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
