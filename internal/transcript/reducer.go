// Package transcript keeps one chat session's ordered message history and the
// lifecycle of its single in-flight assistant reply.
package transcript

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

type State int

const (
	Idle State = iota
	AwaitingReply
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	case Streaming:
		return "streaming"
	}
	return "unknown"
}

// Reducer is the per-session state machine. All methods are safe for
// concurrent use; submissions are rejected while a reply is in flight.
type Reducer struct {
	mu sync.Mutex

	sessionID  string
	categoryID string

	state     State
	messages  []domain.ChatMessage
	acc       strings.Builder
	lastInput string
	// set while OnDone waits on the gateway with the lock released
	finalizing bool

	history []domain.ChatMessage
	welcome string

	gateway domain.Recommender
	trigger TriggerFunc
	now     func() time.Time
}

type Option func(*Reducer)

// WithGateway sets the recommender consulted when a finished reply triggers.
func WithGateway(g domain.Recommender) Option {
	return func(r *Reducer) { r.gateway = g }
}

func WithTrigger(t TriggerFunc) Option {
	return func(r *Reducer) {
		if t != nil {
			r.trigger = t
		}
	}
}

// WithHistory seeds the transcript with previously persisted messages.
func WithHistory(msgs []domain.ChatMessage) Option {
	return func(r *Reducer) { r.history = msgs }
}

// WithWelcome appends the synthetic opening message when the transcript is empty.
func WithWelcome(content string) Option {
	return func(r *Reducer) { r.welcome = content }
}

// WithClock sets the timestamp source for appended messages.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) { r.now = now }
}

func New(sessionID, categoryID string, opts ...Option) *Reducer {
	r := &Reducer{
		sessionID:  sessionID,
		categoryID: categoryID,
		trigger:    KeywordTrigger(config.DefaultTriggerKeywords...),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.messages = append(r.messages, r.history...)
	r.history = nil
	if len(r.messages) == 0 && r.welcome != "" {
		r.appendLocked(domain.RoleAssistant, r.welcome, true)
	}
	return r
}

func (r *Reducer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Messages returns a copy of the transcript.
func (r *Reducer) Messages() []domain.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// Partial is the accumulated text of the in-flight reply.
func (r *Reducer) Partial() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acc.String()
}

func (r *Reducer) appendLocked(role domain.Role, content string, system bool) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:         uuid.New(),
		SessionID:  r.sessionID,
		CategoryID: r.categoryID,
		Role:       role,
		Content:    content,
		IsSystem:   system,
		CreatedAt:  r.now(),
	}
	r.messages = append(r.messages, msg)
	return msg
}

// Submit appends the user's message and opens a reply.
func (r *Reducer) Submit(input string) (domain.ChatMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle || r.finalizing {
		return domain.ChatMessage{}, domain.ErrReplyInFlight
	}
	msg := r.appendLocked(domain.RoleUser, input, false)
	r.lastInput = input
	r.state = AwaitingReply
	r.acc.Reset()
	return msg, nil
}

// OnFragment appends one incremental delta and returns the full partial text.
func (r *Reducer) OnFragment(fragment string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Idle || r.finalizing {
		return "", domain.ErrNoReplyInFlight
	}
	r.acc.WriteString(fragment)
	r.state = Streaming
	return r.acc.String(), nil
}

// OnDone finalizes the in-flight reply. It returns nil when the reply carried
// no text. Recommendations are attached when the trigger fires; a gateway
// failure leaves the message without products.
func (r *Reducer) OnDone(ctx context.Context) (*domain.ChatMessage, error) {
	r.mu.Lock()
	if r.state == Idle || r.finalizing {
		r.mu.Unlock()
		return nil, domain.ErrNoReplyInFlight
	}
	content := strings.TrimSpace(r.acc.String())
	if content == "" {
		r.resetLocked()
		r.mu.Unlock()
		return nil, nil
	}

	userInput := r.lastInput
	var req *domain.RecommendationRequest
	if r.gateway != nil && r.trigger(content, userInput) {
		req = &domain.RecommendationRequest{
			CategoryID:          r.categoryID,
			ConversationContext: conversationContext(r.messages, content),
			UserRequirements:    userInput,
		}
	}
	r.finalizing = true
	r.mu.Unlock()

	var products []domain.Recommendation
	if req != nil {
		products = r.recommend(ctx, *req)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizing = false
	if r.state == Idle {
		// aborted while the gateway was running
		return nil, domain.ErrNoReplyInFlight
	}
	msg := r.appendLocked(domain.RoleAssistant, content, false)
	if len(products) > 0 {
		msg.Products = products
		r.messages[len(r.messages)-1].Products = products
	}
	r.resetLocked()
	return &msg, nil
}

func (r *Reducer) recommend(ctx context.Context, req domain.RecommendationRequest) []domain.Recommendation {
	ctx, cancel := context.WithTimeout(ctx, config.RecommendationTimeout)
	defer cancel()

	res, err := r.gateway.Recommend(ctx, req)
	if err != nil {
		slog.Warn("recommendations skipped", "session_id", r.sessionID, "error", err)
		return nil
	}
	if res == nil {
		return nil
	}
	return res.Products
}

// OnError discards the partial reply and appends the apology message.
func (r *Reducer) OnError(cause error) (domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Idle {
		return domain.ChatMessage{}, domain.ErrNoReplyInFlight
	}
	slog.Error("reply failed", "session_id", r.sessionID, "state", r.state.String(), "error", cause)
	r.resetLocked()
	return r.appendLocked(domain.RoleAssistant, config.ApologyMessage, true), nil
}

// Abort drops the in-flight reply without touching the transcript.
func (r *Reducer) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

// Note appends an application-authored assistant message, such as a quote
// confirmation.
func (r *Reducer) Note(content string) domain.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(domain.RoleAssistant, content, true)
}

func (r *Reducer) resetLocked() {
	r.acc.Reset()
	r.lastInput = ""
	r.state = Idle
}

// conversationContext renders the transcript plus the just-finished reply as
// "role: content" lines.
func conversationContext(history []domain.ChatMessage, reply string) string {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	b.WriteString(string(domain.RoleAssistant))
	b.WriteString(": ")
	b.WriteString(reply)
	return b.String()
}
