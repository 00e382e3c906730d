package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/transcript"
)

// client talks to the consultation server's JSON and SSE endpoints.
type client struct {
	baseURL string
	http    *http.Client
}

type envelope struct {
	Success     bool                    `json:"success"`
	Error       string                  `json:"error"`
	Quote       *domain.Quote           `json:"quote"`
	Item        *domain.QuoteItem       `json:"item"`
	Products    []domain.Recommendation `json:"products"`
	Explanation string                  `json:"explanation"`
}

func (c *client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func (c *client) call(ctx context.Context, path string, body any) (*envelope, error) {
	resp, err := c.postJSON(ctx, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%s: %s (HTTP %d)", path, env.Error, resp.StatusCode)
	}
	return &env, nil
}

func (c *client) createQuote(ctx context.Context, sessionID, categoryID string) (*domain.Quote, error) {
	env, err := c.call(ctx, "/quotes", map[string]string{"sessionId": sessionID, "categoryId": categoryID})
	if err != nil {
		return nil, err
	}
	return env.Quote, nil
}

func (c *client) addItem(ctx context.Context, quoteID, productID uuid.UUID) (*domain.QuoteItem, error) {
	env, err := c.call(ctx, "/quotes/items", map[string]any{
		"quoteId":   quoteID.String(),
		"productId": productID.String(),
		"quantity":  1,
	})
	if err != nil {
		return nil, err
	}
	return env.Item, nil
}

func (c *client) quote(ctx context.Context, sessionID string) (*domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quotes?sessionId="+sessionID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return env.Quote, nil
}

// Recommend implements domain.Recommender over /products/recommendations.
func (c *client) Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	env, err := c.call(ctx, "/products/recommendations", map[string]string{
		"categoryId":          req.CategoryID,
		"conversationContext": req.ConversationContext,
		"userRequirements":    req.UserRequirements,
	})
	if err != nil {
		return nil, err
	}
	return &domain.RecommendationResult{Products: env.Products, Explanation: env.Explanation}, nil
}

// consultationStream is a transcript.Source reading the SSE response body.
type consultationStream struct {
	*transcript.Decoder
	body io.Closer
}

func (c *client) consult(ctx context.Context, sessionID, categoryID, message string, history []domain.ChatMessage) (*consultationStream, error) {
	resp, err := c.postJSON(ctx, "/chat/consultation", map[string]any{
		"sessionId":           sessionID,
		"categoryId":          categoryID,
		"message":             message,
		"conversationHistory": history,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return nil, fmt.Errorf("%w: consultation: %s (HTTP %d)", domain.ErrUpstream, env.Error, resp.StatusCode)
	}
	return &consultationStream{Decoder: transcript.NewDecoder(resp.Body), body: resp.Body}, nil
}

func (s *consultationStream) Close() error {
	return s.body.Close()
}
