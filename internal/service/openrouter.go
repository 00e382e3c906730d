package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

// OpenRouterService streams consultation replies from an OpenAI-compatible
// chat completions endpoint (OpenRouter by default).
type OpenRouterService struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenRouterService(apiKey, baseURL, model string, temperature float32) *OpenRouterService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenRouterService{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}
}

var _ domain.ChatProvider = (*OpenRouterService)(nil)

// StreamReply opens a streamed completion for message, preceded by the
// category system prompt and the most recent history.
func (s *OpenRouterService) StreamReply(ctx context.Context, categoryID string, history []domain.ChatMessage, message string) (domain.ReplyStream, error) {
	category, ok := domain.CategoryByID(categoryID)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: BuildChatMessages(category, history, message),
		Stream:   true,
	}
	// Gemini models reject a temperature through OpenRouter
	if !strings.Contains(strings.ToLower(s.model), "gemini") {
		req.Temperature = s.temperature
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: open chat stream: %v", domain.ErrUpstream, err)
	}
	return &completionStream{stream: stream}, nil
}

// BuildChatMessages lays out the system prompt, the last HistoryWindow
// user/assistant messages and the new user message.
func BuildChatMessages(category domain.Category, history []domain.ChatMessage, message string) []openai.ChatCompletionMessage {
	var turns []domain.ChatMessage
	for _, m := range history {
		if m.Role == domain.RoleUser || m.Role == domain.RoleAssistant {
			turns = append(turns, m)
		}
	}
	if len(turns) > config.HistoryWindow {
		turns = turns[len(turns)-config.HistoryWindow:]
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(turns)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: config.SystemPrompt(category.Name, category.Description),
	})
	for _, m := range turns {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	return msgs
}

type completionStream struct {
	stream *openai.ChatCompletionStream
}

// Recv skips chunks that carry no text.
func (c *completionStream) Recv() (string, error) {
	for {
		chunk, err := c.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return "", err
			}
			if malformedChunk(err) {
				slog.Debug("skipping malformed stream chunk", "error", err)
				continue
			}
			return "", fmt.Errorf("%w: read chat stream: %v", domain.ErrUpstream, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (c *completionStream) Close() error {
	return c.stream.Close()
}

// malformedChunk reports whether err came from decoding a single stream
// chunk; the stream itself is still readable.
func malformedChunk(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
