package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

type CatalogService struct {
	store domain.CatalogStore
	cache *CatalogCache
}

func NewCatalogService(store domain.CatalogStore) *CatalogService {
	return &CatalogService{store: store, cache: NewCatalogCache(config.CatalogCacheDuration)}
}

func (s *CatalogService) Categories() []domain.Category {
	return domain.Categories
}

func (s *CatalogService) Category(id string) (domain.Category, error) {
	c, ok := domain.CategoryByID(id)
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

// ListProducts returns the active products of a category, cheapest first.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	if _, err := s.Category(categoryID); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(categoryID); ok {
		return cached, nil
	}

	products, err := s.store.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	s.cache.Set(categoryID, products)
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// Import upserts categories, pricelists and products, then drops the cache.
func (s *CatalogService) Import(ctx context.Context, categories []domain.Category, pricelists []domain.Pricelist, products []domain.Product) error {
	for _, c := range categories {
		if err := s.store.UpsertCategory(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
	}
	for _, p := range pricelists {
		if err := s.store.UpsertPricelist(ctx, p); err != nil {
			return fmt.Errorf("upsert pricelist %s: %w", p.Name, err)
		}
	}
	for _, p := range products {
		if err := s.store.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}
	s.cache.Invalidate()
	return nil
}
