package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

// Ranker orders catalog products for a consultation.
type Ranker interface {
	Rank(ctx context.Context, req domain.RecommendationRequest, category domain.Category, products []domain.Product) (*domain.RecommendationResult, error)
}

// RecommendationService selects catalog products for a consultation. It asks
// the ranker first and falls back to keyword overlap when the ranker is
// missing, fails or picks nothing.
type RecommendationService struct {
	catalog *CatalogService
	ranker  Ranker
	limit   int
}

func NewRecommendationService(catalog *CatalogService, ranker Ranker) *RecommendationService {
	return &RecommendationService{catalog: catalog, ranker: ranker, limit: config.MaxRecommendations}
}

var _ domain.Recommender = (*RecommendationService)(nil)

func (s *RecommendationService) Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	if strings.TrimSpace(req.CategoryID) == "" {
		return nil, domain.NewValidationError("Category ID is required")
	}
	category, err := s.catalog.Category(req.CategoryID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.ListProducts(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return &domain.RecommendationResult{Products: []domain.Recommendation{}}, nil
	}

	if s.ranker != nil {
		res, err := s.ranker.Rank(ctx, req, category, products)
		switch {
		case err != nil:
			slog.Warn("ranker failed, using keyword ranking", "category", req.CategoryID, "error", err)
		case len(res.Products) > 0:
			if len(res.Products) > s.limit {
				res.Products = res.Products[:s.limit]
			}
			return res, nil
		}
	}
	return KeywordRank(req, category, products, s.limit), nil
}

// KeywordRank scores products by how many request words appear in their name
// or description. With no overlap it returns the first few catalog products
// as low-priority suggestions.
func KeywordRank(req domain.RecommendationRequest, category domain.Category, products []domain.Product, limit int) *domain.RecommendationResult {
	words := tokenize(req.UserRequirements + " " + req.ConversationContext)

	type scored struct {
		product domain.Product
		score   int
		hits    []string
	}
	var ranked []scored
	for _, p := range products {
		text := strings.ToLower(p.Name + " " + p.Description)
		var hits []string
		for w := range words {
			if strings.Contains(text, w) {
				hits = append(hits, w)
			}
		}
		if len(hits) > 0 {
			sort.Strings(hits)
			ranked = append(ranked, scored{product: p, score: len(hits), hits: hits})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	res := &domain.RecommendationResult{Products: []domain.Recommendation{}}
	if len(ranked) == 0 {
		for i, p := range products {
			if i == 3 || i == limit {
				break
			}
			res.Products = append(res.Products, domain.NewRecommendation(p, "Popular choice for "+strings.ToLower(category.Name)+" installations", domain.PriorityLow))
		}
		res.Explanation = "No exact matches yet; here are some popular " + strings.ToLower(category.Name) + " products."
		return res
	}

	top := ranked[0].score
	for i, r := range ranked {
		if i == limit {
			break
		}
		priority := domain.PriorityMedium
		if r.score == top {
			priority = domain.PriorityHigh
		}
		reason := "Matches your interest in " + strings.Join(r.hits, ", ")
		res.Products = append(res.Products, domain.NewRecommendation(r.product, reason, priority))
	}
	res.Explanation = "Selected from the " + strings.ToLower(category.Name) + " catalog based on your requirements."
	return res
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "you": true, "your": true,
	"need": true, "want": true, "have": true, "that": true, "this": true, "what": true,
	"looking": true, "recommend": true, "suggest": true, "product": true, "products": true,
	"user": true, "assistant": true, "can": true, "are": true, "our": true, "would": true,
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) < 3 || stopWords[f] {
			continue
		}
		words[f] = true
	}
	return words
}
