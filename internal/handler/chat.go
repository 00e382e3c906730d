package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/transcript"
	"github.com/valyala/fasthttp"
)

type sessionRequest struct {
	SessionID  string `json:"sessionId"`
	CategoryID string `json:"categoryId"`
}

// StartSession opens a session transcript with its welcome message.
func (h *Handler) StartSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	msgs, err := h.transcripts.Start(c.UserContext(), req.SessionID, req.CategoryID)
	if err != nil {
		return respondError(c, err, "start session")
	}
	return success(c, fiber.Map{"messages": msgs})
}

func (h *Handler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.transcripts.List(c.UserContext(), c.Query("sessionId"))
	if err != nil {
		return respondError(c, err, "list messages")
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return success(c, fiber.Map{"messages": msgs})
}

type appendMessageRequest struct {
	SessionID   string `json:"sessionId"`
	CategoryID  string `json:"categoryId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

func (h *Handler) AppendMessage(c *fiber.Ctx) error {
	var req appendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.SessionID == "" || req.CategoryID == "" || req.Message == "" || req.MessageType == "" {
		return fail(c, fiber.StatusBadRequest, "Session ID, category ID, message, and message type are required")
	}
	msg := &domain.ChatMessage{
		ID:         uuid.New(),
		SessionID:  req.SessionID,
		CategoryID: req.CategoryID,
		Role:       domain.Role(req.MessageType),
		Content:    req.Message,
		CreatedAt:  time.Now(),
	}
	if err := h.transcripts.Append(c.UserContext(), msg); err != nil {
		return respondError(c, err, "append message")
	}
	return success(c, fiber.Map{"message": msg})
}

type consultationRequest struct {
	SessionID           string               `json:"sessionId"`
	CategoryID          string               `json:"categoryId"`
	Message             string               `json:"message"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

// Consultation streams a model reply for a client-held transcript. Nothing is
// persisted; the client reduces the fragments itself.
func (h *Handler) Consultation(c *fiber.Ctx) error {
	var req consultationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.CategoryID == "" || strings.TrimSpace(req.Message) == "" {
		return fail(c, fiber.StatusBadRequest, "Category ID and message are required")
	}
	if _, err := h.catalog.Category(req.CategoryID); err != nil {
		return respondError(c, err, "consultation")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.StreamTimeout)
	stream, err := h.provider.StreamReply(ctx, req.CategoryID, req.ConversationHistory, req.Message)
	if err != nil {
		cancel()
		slog.Error("open consultation stream", "session_id", req.SessionID, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to process consultation")
	}

	setEventStreamHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer stream.Close()

		for {
			fragment, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				slog.Warn("consultation stream failed", "session_id", req.SessionID, "error", err)
				_ = transcript.WriteError(w, config.ApologyMessage)
				break
			}
			if err := transcript.WriteFragment(w, fragment); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// client went away
				return
			}
		}
		_ = transcript.WriteDone(w)
		_ = w.Flush()
	}))
	return nil
}

type replyRequest struct {
	CategoryID string `json:"categoryId"`
	Message    string `json:"message"`
}

// Reply runs one server-side transcript turn: the user message and the
// finalized assistant message are persisted, fragments are streamed as they
// arrive and the finalized message is sent last before [DONE].
func (h *Handler) Reply(c *fiber.Ctx) error {
	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	sessionID := c.Params("sessionId")

	turn, _, err := h.replies.Begin(c.UserContext(), sessionID, req.CategoryID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrReplyInFlight) {
			h.replyOutcome("rejected")
		}
		return respondError(c, err, "begin reply")
	}
	if h.metrics != nil {
		h.metrics.RepliesInFlight.Inc()
	}

	setEventStreamHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if h.metrics != nil {
			defer h.metrics.RepliesInFlight.Dec()
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sent := 0
		msg, err := turn.Stream(ctx, func(partial string) {
			if ctx.Err() != nil || len(partial) <= sent {
				return
			}
			fragment := partial[sent:]
			sent = len(partial)
			if transcript.WriteFragment(w, fragment) != nil || w.Flush() != nil {
				cancel()
			}
		})

		switch {
		case errors.Is(err, context.Canceled):
			h.replyOutcome("aborted")
			return
		case err != nil:
			h.replyOutcome("failed")
			slog.Error("reply failed", "session_id", sessionID, "error", err)
		case msg == nil:
			h.replyOutcome("empty")
		default:
			h.replyOutcome("completed")
		}

		if msg != nil {
			_ = transcript.WriteMessage(w, msg)
		} else if err != nil {
			_ = transcript.WriteError(w, config.ApologyMessage)
		}
		_ = transcript.WriteDone(w)
		_ = w.Flush()
	}))
	return nil
}

func (h *Handler) replyOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.RepliesTotal.WithLabelValues(outcome).Inc()
	}
}

func setEventStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}
