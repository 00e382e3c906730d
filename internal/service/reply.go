package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/transcript"
)

// ReplyService runs a consultation turn on the server: it persists the user
// message, streams the provider reply through a transcript reducer and
// persists whatever the reducer finalizes.
type ReplyService struct {
	transcripts *TranscriptService
	provider    domain.ChatProvider
	gateway     domain.Recommender
	gate        transcript.Gate
	trigger     transcript.TriggerFunc
}

func NewReplyService(transcripts *TranscriptService, provider domain.ChatProvider, gateway domain.Recommender, gate transcript.Gate, trigger transcript.TriggerFunc) *ReplyService {
	return &ReplyService{
		transcripts: transcripts,
		provider:    provider,
		gateway:     gateway,
		gate:        gate,
		trigger:     trigger,
	}
}

// Turn is one accepted reply. Stream must be called exactly once.
type Turn struct {
	svc       *ReplyService
	reducer   *transcript.Reducer
	sessionID string
	category  string
	history   []domain.ChatMessage
	input     string
	release   func(context.Context) error
}

// Begin claims the session's reply slot and records the user message.
// It fails with domain.ErrReplyInFlight when another reply is running.
func (s *ReplyService) Begin(ctx context.Context, sessionID, categoryID, message string) (*Turn, *domain.ChatMessage, error) {
	if sessionID == "" || categoryID == "" {
		return nil, nil, domain.NewValidationError("Session ID and category ID are required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, nil, domain.NewValidationError("Message is required")
	}

	release, err := s.gate.Acquire(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	// History is read under the gate so it includes the previous turn's reply.
	history, err := s.transcripts.Start(ctx, sessionID, categoryID)
	if err != nil {
		release(context.WithoutCancel(ctx))
		return nil, nil, err
	}

	r := transcript.New(sessionID, categoryID,
		transcript.WithHistory(history),
		transcript.WithGateway(s.gateway),
		transcript.WithTrigger(s.trigger),
	)
	userMsg, err := r.Submit(message)
	if err != nil {
		release(context.WithoutCancel(ctx))
		return nil, nil, err
	}
	if err := s.transcripts.Append(ctx, &userMsg); err != nil {
		release(context.WithoutCancel(ctx))
		return nil, nil, err
	}

	return &Turn{
		svc:       s,
		reducer:   r,
		sessionID: sessionID,
		category:  categoryID,
		history:   history,
		input:     userMsg.Content,
		release:   release,
	}, &userMsg, nil
}

// Stream drives the reply to completion, calling onPartial with the
// accumulated text after every fragment. It returns the persisted assistant
// message: the reply, the apology on upstream failure, or nil when the reply
// was empty or ctx was canceled.
func (t *Turn) Stream(ctx context.Context, onPartial func(string)) (*domain.ChatMessage, error) {
	persistCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := t.release(persistCtx); err != nil {
			slog.Warn("release reply gate", "session_id", t.sessionID, "error", err)
		}
	}()

	streamCtx, cancel := context.WithTimeout(ctx, config.StreamTimeout)
	defer cancel()

	stream, err := t.svc.provider.StreamReply(streamCtx, t.category, t.history, t.input)
	if err != nil {
		if ctx.Err() != nil {
			t.reducer.Abort()
			return nil, ctx.Err()
		}
		apology, ferr := t.reducer.OnError(err)
		if ferr != nil {
			return nil, ferr
		}
		return t.persist(persistCtx, &apology, err)
	}
	defer stream.Close()

	msg, err := transcript.Run(streamCtx, t.reducer, stream, onPartial)
	if errors.Is(err, context.Canceled) {
		slog.Info("reply aborted", "session_id", t.sessionID)
		return nil, err
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// our own stream timeout, not the client going away; Run already dropped the partial
		slog.Error("reply timed out", "session_id", t.sessionID, "timeout", config.StreamTimeout)
		apology := t.reducer.Note(config.ApologyMessage)
		return t.persist(persistCtx, &apology, fmt.Errorf("%w: reply timed out", domain.ErrUpstream))
	}
	if msg == nil {
		return nil, err
	}
	return t.persist(persistCtx, msg, err)
}

func (t *Turn) persist(ctx context.Context, msg *domain.ChatMessage, cause error) (*domain.ChatMessage, error) {
	if err := t.svc.transcripts.Append(ctx, msg); err != nil {
		return nil, errors.Join(cause, err)
	}
	return msg, cause
}

// Discard releases the reply slot of a turn that will never be streamed.
func (t *Turn) Discard() {
	t.reducer.Abort()
	if err := t.release(context.Background()); err != nil {
		slog.Warn("release reply gate", "session_id", t.sessionID, "error", err)
	}
}
