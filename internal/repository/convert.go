package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/repository/sqlc"
	"github.com/shopspring/decimal"
)

func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func nullUUIDToPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

func uuidPtrToNull(v *uuid.UUID) uuid.NullUUID {
	if v == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *v, Valid: true}
}

func rowToQuote(row sqlc.Quote) *domain.Quote {
	return &domain.Quote{
		ID:            row.ID,
		SessionID:     row.SessionID,
		CategoryID:    row.CategoryID,
		Status:        domain.QuoteStatus(row.Status),
		TotalAmount:   row.TotalAmount,
		CustomerEmail: row.CustomerEmail,
		CreatedAt:     pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:     pgTimestamptzToTime(row.UpdatedAt),
		Items:         []domain.QuoteItem{},
	}
}

func rowToQuoteItem(row sqlc.QuoteItem) *domain.QuoteItem {
	return &domain.QuoteItem{
		ID:         row.ID,
		QuoteID:    row.QuoteID,
		ProductID:  row.ProductID,
		Quantity:   int(row.Quantity),
		UnitPrice:  row.UnitPrice,
		TotalPrice: row.TotalPrice,
		AddedAt:    pgTimestamptzToTime(row.AddedAt),
	}
}

func itemRowWithProduct(row sqlc.ListQuoteItemsWithProductsRow) domain.QuoteItem {
	return domain.QuoteItem{
		ID:         row.ID,
		QuoteID:    row.QuoteID,
		ProductID:  row.ProductID,
		Quantity:   int(row.Quantity),
		UnitPrice:  row.UnitPrice,
		TotalPrice: row.TotalPrice,
		AddedAt:    pgTimestamptzToTime(row.AddedAt),
		Product: &domain.ProductSnapshot{
			ID:          row.ProductID,
			Name:        row.ProductName,
			Description: row.ProductDescription,
			RetailPrice: row.ProductRetailPrice,
		},
	}
}

// productRow is the column set shared by GetProductRow and ListActiveProductsByCategoryRow.
type productRow struct {
	ID                        uuid.UUID
	Name                      string
	Description               string
	CategoryID                string
	PricelistID               uuid.NullUUID
	CostPrice                 decimal.Decimal
	RetailPrice               decimal.Decimal
	MarkupPercentage          decimal.Decimal
	IsActive                  bool
	CreatedAt                 pgtype.Timestamptz
	PricelistName             *string
	PricelistPriceType        *string
	PricelistMarginPercentage decimal.NullDecimal
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		CategoryID:       r.CategoryID,
		PricelistID:      nullUUIDToPtr(r.PricelistID),
		CostPrice:        r.CostPrice,
		RetailPrice:      r.RetailPrice,
		MarkupPercentage: r.MarkupPercentage,
		IsActive:         r.IsActive,
		CreatedAt:        pgTimestamptzToTime(r.CreatedAt),
	}
	if p.PricelistID != nil && r.PricelistName != nil {
		pl := &domain.Pricelist{ID: *p.PricelistID, Name: *r.PricelistName}
		if r.PricelistPriceType != nil {
			pl.PriceType = *r.PricelistPriceType
		}
		if r.PricelistMarginPercentage.Valid {
			pl.MarginPercentage = r.PricelistMarginPercentage.Decimal
		}
		p.Pricelist = pl
	}
	return p
}

func rowToChatMessage(row sqlc.ChatMessage) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:         row.ID,
		SessionID:  row.SessionID,
		CategoryID: row.CategoryID,
		Role:       domain.Role(row.Role),
		Content:    row.Content,
		IsSystem:   row.IsSystem,
		CreatedAt:  pgTimestamptzToTime(row.CreatedAt),
	}
	if len(row.Products) > 0 {
		if err := json.Unmarshal(row.Products, &msg.Products); err != nil {
			return msg, err
		}
	}
	return msg, nil
}
