package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

type TranscriptService struct {
	store domain.TranscriptStore
}

func NewTranscriptService(store domain.TranscriptStore) *TranscriptService {
	return &TranscriptService{store: store}
}

// Start opens a session transcript with the category welcome message and
// returns the full history. Repeated calls leave the transcript unchanged.
func (s *TranscriptService) Start(ctx context.Context, sessionID, categoryID string) ([]domain.ChatMessage, error) {
	if sessionID == "" || categoryID == "" {
		return nil, domain.NewValidationError("Session ID and category ID are required")
	}
	category, ok := domain.CategoryByID(categoryID)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	welcome := &domain.ChatMessage{
		ID:         uuid.New(),
		SessionID:  sessionID,
		CategoryID: categoryID,
		Role:       domain.RoleAssistant,
		Content:    config.WelcomeMessage(category.Name),
		IsSystem:   true,
		CreatedAt:  time.Now(),
	}
	if _, err := s.store.StartTranscript(ctx, welcome); err != nil {
		return nil, fmt.Errorf("start transcript: %w", err)
	}
	return s.List(ctx, sessionID)
}

func (s *TranscriptService) List(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("Session ID is required")
	}
	msgs, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Append stores a client-side message as-is after validating it.
func (s *TranscriptService) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.SessionID == "" || msg.CategoryID == "" {
		return domain.NewValidationError("Session ID and category ID are required")
	}
	if !msg.Role.Valid() {
		return domain.NewValidationError(fmt.Sprintf("Unknown message type %q", msg.Role))
	}
	if strings.TrimSpace(msg.Content) == "" {
		return domain.NewValidationError("Message content is required")
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Note records an application-authored assistant message.
func (s *TranscriptService) Note(ctx context.Context, sessionID, categoryID, content string) (*domain.ChatMessage, error) {
	msg := &domain.ChatMessage{
		ID:         uuid.New(),
		SessionID:  sessionID,
		CategoryID: categoryID,
		Role:       domain.RoleAssistant,
		Content:    content,
		IsSystem:   true,
		CreatedAt:  time.Now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append note: %w", err)
	}
	return msg, nil
}
