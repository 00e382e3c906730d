package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/transcript"
)

type fakeStream struct {
	frags []string
	end   error
	// block, when set, is waited on before returning end
	block chan struct{}
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.frags) > 0 {
		f := s.frags[0]
		s.frags = s.frags[1:]
		return f, nil
	}
	if s.block != nil {
		<-s.block
	}
	return "", s.end
}

func (s *fakeStream) Close() error { return nil }

type fakeProvider struct {
	stream  *fakeStream
	openErr error
	history []domain.ChatMessage
}

func (p *fakeProvider) StreamReply(ctx context.Context, categoryID string, history []domain.ChatMessage, message string) (domain.ReplyStream, error) {
	p.history = history
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.stream, nil
}

func newReplyService(env *testEnv, provider domain.ChatProvider) *ReplyService {
	return NewReplyService(
		env.transcripts,
		provider,
		NewRecommendationService(env.catalog, nil),
		transcript.NewMemoryGate(time.Minute),
		transcript.KeywordTrigger(config.DefaultTriggerKeywords...),
	)
}

func TestReplyPersistsTurn(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	env.product(t, "restaurant", "Patio Speaker", "Weatherproof speaker for the patio", 180)

	provider := &fakeProvider{stream: &fakeStream{frags: []string{"Hel", "lo wor", "ld"}, end: io.EOF}}
	svc := newReplyService(env, provider)

	turn, userMsg, err := svc.Begin(ctx, "sess-1", "restaurant", "I need a patio speaker")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if userMsg.Role != domain.RoleUser {
		t.Fatalf("user msg = %+v", userMsg)
	}

	var partials []string
	msg, err := turn.Stream(ctx, func(p string) { partials = append(partials, p) })
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if msg.Content != "Hello world" || len(partials) != 3 {
		t.Fatalf("msg = %q partials = %q", msg.Content, partials)
	}
	if len(msg.Products) == 0 || msg.Products[0].Name != "Patio Speaker" {
		t.Fatalf("products = %+v", msg.Products)
	}

	msgs, _ := env.transcripts.List(ctx, "sess-1")
	if len(msgs) != 3 {
		t.Fatalf("transcript = %d messages, want welcome, user, assistant", len(msgs))
	}
	if !msgs[0].IsSystem || msgs[1].Content != "I need a patio speaker" || msgs[2].Content != "Hello world" {
		t.Fatalf("transcript = %+v", msgs)
	}
	if len(provider.history) != 1 {
		t.Fatalf("provider history = %d, want the welcome message only", len(provider.history))
	}
}

func TestReplyUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	provider := &fakeProvider{stream: &fakeStream{frags: []string{"Hel"}, end: io.ErrUnexpectedEOF}}
	svc := newReplyService(env, provider)

	turn, _, err := svc.Begin(ctx, "sess-1", "home", "hello")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	msg, err := turn.Stream(ctx, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v", err)
	}
	if msg == nil || msg.Content != config.ApologyMessage {
		t.Fatalf("msg = %+v", msg)
	}
	msgs, _ := env.transcripts.List(ctx, "sess-1")
	if last := msgs[len(msgs)-1]; last.Content != config.ApologyMessage || !last.IsSystem {
		t.Fatalf("last = %+v", last)
	}
}

func TestReplyOpenFailure(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	svc := newReplyService(env, &fakeProvider{openErr: domain.ErrUpstream})

	turn, _, _ := svc.Begin(ctx, "sess-1", "home", "hello")
	msg, err := turn.Stream(ctx, nil)
	if !errors.Is(err, domain.ErrUpstream) || msg.Content != config.ApologyMessage {
		t.Fatalf("stream = %+v, %v", msg, err)
	}
}

func TestReplyRejectsConcurrentTurn(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	block := make(chan struct{})
	svc := newReplyService(env, &fakeProvider{stream: &fakeStream{frags: []string{"x"}, end: io.EOF, block: block}})

	turn, _, err := svc.Begin(ctx, "sess-1", "home", "first")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		turn.Stream(ctx, nil)
	}()

	if _, _, err := svc.Begin(ctx, "sess-1", "home", "second"); !errors.Is(err, domain.ErrReplyInFlight) {
		t.Fatalf("second begin err = %v", err)
	}
	close(block)
	<-done

	next, _, err := svc.Begin(ctx, "sess-1", "home", "third")
	if err != nil {
		t.Fatalf("begin after completion: %v", err)
	}
	next.Discard()
}

// transcriptAtAcquire records how many messages the session had when the
// gate was taken.
type transcriptAtAcquire struct {
	transcript.Gate
	transcripts *TranscriptService
	seen        []int
}

func (g *transcriptAtAcquire) Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	msgs, err := g.transcripts.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	g.seen = append(g.seen, len(msgs))
	return g.Gate.Acquire(ctx, sessionID)
}

func TestReplyReadsHistoryUnderGate(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	gate := &transcriptAtAcquire{Gate: transcript.NewMemoryGate(time.Minute), transcripts: env.transcripts}
	provider := &fakeProvider{stream: &fakeStream{frags: []string{"first answer"}, end: io.EOF}}
	svc := NewReplyService(env.transcripts, provider, NewRecommendationService(env.catalog, nil), gate, transcript.Never)

	turn, _, err := svc.Begin(ctx, "sess-1", "home", "first")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if len(gate.seen) != 1 || gate.seen[0] != 0 {
		t.Fatalf("transcript at acquire = %v, want empty before the welcome is written", gate.seen)
	}
	if _, err := turn.Stream(ctx, nil); err != nil {
		t.Fatalf("stream: %v", err)
	}

	provider.stream = &fakeStream{frags: []string{"second answer"}, end: io.EOF}
	turn, _, err = svc.Begin(ctx, "sess-1", "home", "second")
	if err != nil {
		t.Fatalf("second begin: %v", err)
	}
	if _, err := turn.Stream(ctx, nil); err != nil {
		t.Fatalf("second stream: %v", err)
	}
	if n := len(provider.history); n != 3 || provider.history[2].Content != "first answer" {
		t.Fatalf("second turn history = %+v, want welcome, first, first answer", provider.history)
	}
}

func TestReplyAbortPersistsNothing(t *testing.T) {
	env := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	svc := newReplyService(env, &fakeProvider{stream: &fakeStream{frags: []string{"Hel"}, end: context.Canceled, block: block}})

	turn, _, err := svc.Begin(ctx, "sess-1", "home", "hello")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	go func() {
		cancel()
		close(block)
	}()
	msg, err := turn.Stream(ctx, nil)
	if !errors.Is(err, context.Canceled) || msg != nil {
		t.Fatalf("stream = %+v, %v", msg, err)
	}

	msgs, _ := env.transcripts.List(context.Background(), "sess-1")
	if len(msgs) != 2 {
		t.Fatalf("transcript = %d messages, want welcome and user only", len(msgs))
	}
}
