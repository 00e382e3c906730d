package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
	"google.golang.org/genai"
)

// GeminiRanker asks a Gemini model to pick catalog products, constrained to
// a JSON response schema.
type GeminiRanker struct {
	client *genai.Client
	model  string
}

func NewGeminiRanker(ctx context.Context, apiKey, model string) (*GeminiRanker, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiRanker{client: client, model: model}, nil
}

func recommendationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"explanation": {
				Type:        genai.TypeString,
				Description: "One or two sentences on why these products fit",
			},
			"recommendations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"product_id": {Type: genai.TypeString, Description: "id from the catalog list"},
						"reason":     {Type: genai.TypeString},
						"priority":   {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
					},
					Required: []string{"product_id", "reason", "priority"},
				},
			},
		},
		Required:         []string{"explanation", "recommendations"},
		PropertyOrdering: []string{"explanation", "recommendations"},
	}
}

type rankedResponse struct {
	Explanation     string `json:"explanation"`
	Recommendations []struct {
		ProductID string `json:"product_id"`
		Reason    string `json:"reason"`
		Priority  string `json:"priority"`
	} `json:"recommendations"`
}

func (g *GeminiRanker) Rank(ctx context.Context, req domain.RecommendationRequest, category domain.Category, products []domain.Product) (*domain.RecommendationResult, error) {
	temp := float32(0.2)
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(rankingPrompt(req, category, products)),
		&genai.GenerateContentConfig{
			Temperature:      &temp,
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationSchema(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", domain.ErrUpstream, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty gemini response", domain.ErrUpstream)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return parseRanking(text.String(), products)
}

// parseRanking maps the model's picks back onto catalog products, dropping
// ids it made up and duplicates.
func parseRanking(raw string, products []domain.Product) (*domain.RecommendationResult, error) {
	var parsed rankedResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse ranking: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	res := &domain.RecommendationResult{Explanation: parsed.Explanation, Products: []domain.Recommendation{}}
	seen := make(map[uuid.UUID]bool)
	for _, r := range parsed.Recommendations {
		id, err := uuid.Parse(r.ProductID)
		if err != nil {
			continue
		}
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		priority := domain.Priority(r.Priority)
		if priority != domain.PriorityHigh && priority != domain.PriorityMedium && priority != domain.PriorityLow {
			priority = domain.PriorityMedium
		}
		res.Products = append(res.Products, domain.NewRecommendation(p, r.Reason, priority))
	}
	return res, nil
}

func rankingPrompt(req domain.RecommendationRequest, category domain.Category, products []domain.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You recommend audio-visual products for a %s customer (%s).\n", category.Name, category.Description)
	b.WriteString("Pick the products that best match the customer's requirements. Use only ids from the catalog.\n\n")
	b.WriteString("Catalog:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- id=%s | %s | %s | $%s\n", p.ID, p.Name, p.Description, p.RetailPrice.StringFixed(2))
	}
	b.WriteString("\nConversation:\n")
	b.WriteString(req.ConversationContext)
	b.WriteString("\n\nCustomer requirements:\n")
	b.WriteString(req.UserRequirements)
	return b.String()
}
