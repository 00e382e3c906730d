package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Pricelist struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	PriceType        string          `json:"price_type"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
}

type Product struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	CategoryID       string          `json:"category_id"`
	PricelistID      *uuid.UUID      `json:"pricelist_id,omitempty"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	RetailPrice      decimal.Decimal `json:"retail_price"`
	MarkupPercentage decimal.Decimal `json:"markup_percentage"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	Pricelist        *Pricelist      `json:"pricelist,omitempty"`
}

func (p *Product) Snapshot() *ProductSnapshot {
	return &ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		RetailPrice: p.RetailPrice,
	}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is a read-only projection of a catalog product returned by
// the recommendation gateway.
type Recommendation struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"retail_price"`
	CategoryID  string          `json:"category_id,omitempty"`
	Reason      string          `json:"recommendation_reason,omitempty"`
	Priority    Priority        `json:"priority,omitempty"`
	Pricelist   *Pricelist      `json:"pricelist,omitempty"`
}

func NewRecommendation(p Product, reason string, priority Priority) Recommendation {
	return Recommendation{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.RetailPrice,
		CategoryID:  p.CategoryID,
		Reason:      reason,
		Priority:    priority,
		Pricelist:   p.Pricelist,
	}
}

type RecommendationRequest struct {
	CategoryID          string
	ConversationContext string
	UserRequirements    string
}

type RecommendationResult struct {
	Products    []Recommendation
	Explanation string
}
