package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
)

func TestBuildChatMessagesWindow(t *testing.T) {
	category, _ := domain.CategoryByID("education")

	var history []domain.ChatMessage
	history = append(history, domain.ChatMessage{Role: domain.RoleSystem, Content: "internal"})
	for i := 0; i < config.HistoryWindow+5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		history = append(history, domain.ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := BuildChatMessages(category, history, "latest")
	if len(msgs) != config.HistoryWindow+2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("first role = %s", msgs[0].Role)
	}
	if msgs[1].Content != "m5" {
		t.Fatalf("oldest kept = %s, want m5", msgs[1].Content)
	}
	if last := msgs[len(msgs)-1]; last.Role != openai.ChatMessageRoleUser || last.Content != "latest" {
		t.Fatalf("last = %+v", last)
	}
}

func TestOpenRouterStream(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range []string{"Hel", "", "lo"} {
			chunk := openai.ChatCompletionStreamResponse{
				Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatCompletionStreamChoiceDelta{Content: frag}}},
			}
			b, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	svc := NewOpenRouterService("test-key", srv.URL, "openai/gpt-4o-mini", 0.7)
	stream, err := svc.StreamReply(context.Background(), "home", nil, "hi")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	var text string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		text += frag
	}
	if text != "Hello" {
		t.Fatalf("text = %q", text)
	}
	if !gotReq.Stream || gotReq.Model != "openai/gpt-4o-mini" || len(gotReq.Messages) != 2 {
		t.Fatalf("request = %+v", gotReq)
	}
}

func TestOpenRouterStreamSkipsMalformedChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunk := func(frag string) {
			b, _ := json.Marshal(openai.ChatCompletionStreamResponse{
				Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatCompletionStreamChoiceDelta{Content: frag}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		chunk("Hel")
		fmt.Fprint(w, "data: {not json\n\n")
		fmt.Fprint(w, "data: {\"choices\":\"oops\"}\n\n")
		chunk("lo")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	svc := NewOpenRouterService("test-key", srv.URL, "openai/gpt-4o-mini", 0.7)
	stream, err := svc.StreamReply(context.Background(), "home", nil, "hi")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	var text string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		text += frag
	}
	if text != "Hello" {
		t.Fatalf("text = %q, want %q", text, "Hello")
	}
}

func TestOpenRouterUnknownCategory(t *testing.T) {
	svc := NewOpenRouterService("k", "http://127.0.0.1:0", "m", 0)
	if _, err := svc.StreamReply(context.Background(), "nope", nil, "hi"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("err = %v", err)
	}
}
