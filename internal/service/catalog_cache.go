package service

import (
	"sync"
	"time"

	"github.com/set-night/avquote/internal/domain"
)

type cachedProducts struct {
	products []domain.Product
	cachedAt time.Time
}

// CatalogCache holds active products per category for a fixed TTL.
type CatalogCache struct {
	mu      sync.RWMutex
	entries map[string]cachedProducts
	ttl     time.Duration
	now     func() time.Time
}

func NewCatalogCache(ttl time.Duration) *CatalogCache {
	return &CatalogCache{entries: make(map[string]cachedProducts), ttl: ttl, now: time.Now}
}

func (c *CatalogCache) Get(categoryID string) ([]domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[categoryID]
	if !ok || c.now().Sub(e.cachedAt) > c.ttl {
		return nil, false
	}
	return e.products, true
}

func (c *CatalogCache) Set(categoryID string, products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[categoryID] = cachedProducts{products: products, cachedAt: c.now()}
}

func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedProducts)
}
