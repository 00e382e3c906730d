package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/avquote/internal/domain"
)

type stubRanker struct {
	res *domain.RecommendationResult
	err error
}

func (r stubRanker) Rank(ctx context.Context, req domain.RecommendationRequest, c domain.Category, products []domain.Product) (*domain.RecommendationResult, error) {
	return r.res, r.err
}

func TestKeywordFallback(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	env.product(t, "worship", "Wireless Microphone", "Handheld mic for the pulpit", 300)
	env.product(t, "worship", "Ceiling Speaker", "Even coverage for large halls", 200)
	env.product(t, "worship", "Projector", "Bright projector for lyrics", 900)

	svc := NewRecommendationService(env.catalog, stubRanker{err: errors.New("quota exceeded")})
	res, err := svc.Recommend(ctx, domain.RecommendationRequest{
		CategoryID:       "worship",
		UserRequirements: "I need a projector for song lyrics",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(res.Products) == 0 || res.Products[0].Name != "Projector" {
		t.Fatalf("products = %+v", res.Products)
	}
	if res.Products[0].Priority != domain.PriorityHigh || res.Products[0].Reason == "" {
		t.Fatalf("top = %+v", res.Products[0])
	}
}

func TestKeywordFallbackNoOverlap(t *testing.T) {
	env := setup(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		env.product(t, "gym", name, "", 10)
	}
	svc := NewRecommendationService(env.catalog, nil)

	res, err := svc.Recommend(context.Background(), domain.RecommendationRequest{CategoryID: "gym", UserRequirements: "zzz"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(res.Products) != 3 {
		t.Fatalf("products = %d, want 3", len(res.Products))
	}
	for _, p := range res.Products {
		if p.Priority != domain.PriorityLow {
			t.Fatalf("priority = %s", p.Priority)
		}
	}
}

func TestRankerResultPreferred(t *testing.T) {
	env := setup(t)
	p := env.product(t, "home", "Soundbar", "", 100)
	ranked := &domain.RecommendationResult{
		Products:    []domain.Recommendation{domain.NewRecommendation(p, "fits the room", domain.PriorityHigh)},
		Explanation: "compact living room",
	}
	svc := NewRecommendationService(env.catalog, stubRanker{res: ranked})

	res, err := svc.Recommend(context.Background(), domain.RecommendationRequest{CategoryID: "home"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Explanation != "compact living room" || len(res.Products) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRecommendValidation(t *testing.T) {
	svc := NewRecommendationService(setup(t).catalog, nil)

	var verr *domain.ValidationError
	if _, err := svc.Recommend(context.Background(), domain.RecommendationRequest{}); !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Recommend(context.Background(), domain.RecommendationRequest{CategoryID: "nope"}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("err = %v", err)
	}
	res, err := svc.Recommend(context.Background(), domain.RecommendationRequest{CategoryID: "education"})
	if err != nil || len(res.Products) != 0 {
		t.Fatalf("empty catalog = %+v, %v", res, err)
	}
}

func TestParseRanking(t *testing.T) {
	env := setup(t)
	a := env.product(t, "home", "Soundbar", "", 100)
	b := env.product(t, "home", "Receiver", "", 400)
	products, _ := env.catalog.ListProducts(context.Background(), "home")

	raw := `{"explanation":"small room","recommendations":[
		{"product_id":"` + b.ID.String() + `","reason":"power","priority":"high"},
		{"product_id":"not-a-uuid","reason":"x","priority":"low"},
		{"product_id":"` + b.ID.String() + `","reason":"dup","priority":"low"},
		{"product_id":"` + a.ID.String() + `","reason":"compact","priority":"urgent"}
	]}`
	res, err := parseRanking(raw, products)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Products) != 2 {
		t.Fatalf("products = %+v", res.Products)
	}
	if res.Products[0].ID != b.ID || res.Products[1].Priority != domain.PriorityMedium {
		t.Fatalf("products = %+v", res.Products)
	}
	if _, err := parseRanking("not json", products); err == nil {
		t.Fatal("expected parse error")
	}
}
