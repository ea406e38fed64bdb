package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"autochat/internal/domain"
	"autochat/internal/infra/config"
)

func testProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(config.ProviderConfig{
		Name:    "test",
		BaseURL: srv.URL,
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
	}, testLogger())
}

func TestChatPlainResponse(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header = %q", got)
		}

		var req openaiRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("request body: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}

		json.NewEncoder(w).Encode(openaiResponse{
			ID:    "chatcmpl-1",
			Model: req.Model,
			Choices: []openaiChoice{{
				Message: openaiMessage{Role: "assistant", Content: "hello back"},
			}},
			Usage: openaiUsage{PromptTokens: 10, CompletionTokens: 3, TotalTokens: 13},
		})
	})

	resp, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{domain.NewUserMessage("hello")},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Message.Content != "hello back" {
		t.Errorf("content = %q", resp.Message.Content)
	}
	if resp.Usage.TotalTokens != 13 {
		t.Errorf("total tokens = %d", resp.Usage.TotalTokens)
	}
}

func TestChatToolCallRoundTrip(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("request body: %v", err)
		}

		// The tool result message must carry tool_call_id, not tool_calls.
		last := req.Messages[len(req.Messages)-1]
		if last.Role != "tool" || last.ToolCallID != "call-1" {
			t.Errorf("tool message = %+v", last)
		}
		if len(last.ToolCalls) != 0 {
			t.Error("tool result must not echo tool_calls")
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name == "" {
			t.Errorf("tools = %+v", req.Tools)
		}

		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{
				Message: openaiMessage{
					Role: "assistant",
					ToolCalls: []openaiToolCall{{
						ID:   "call-2",
						Type: "function",
						Function: openaiToolCallFunction{
							Name:      "get_matches",
							Arguments: `{"top_k":3}`,
						},
					}},
				},
			}},
		})
	})

	resp, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{
			domain.NewUserMessage("find jobs"),
			{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "call-1", Name: "get_matches"}}},
			{Role: domain.RoleTool, Name: "get_matches", Content: "[]", ToolCalls: []domain.ToolCall{{ID: "call-1", Name: "get_matches"}}},
		},
		Tools: []domain.ToolSchema{{Name: "get_matches", Parameters: json.RawMessage(`{"type":"object"}`)}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	calls := resp.Message.ToolCalls
	if len(calls) != 1 || calls[0].Name != "get_matches" || calls[0].ID != "call-2" {
		t.Errorf("tool calls = %+v", calls)
	}
	if string(calls[0].Arguments) != `{"top_k":3}` {
		t.Errorf("arguments = %s", calls[0].Arguments)
	}
}

func TestChatMapsHTTPErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimit},
		{http.StatusRequestEntityTooLarge, domain.ErrContextOverflow},
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusInternalServerError, domain.ErrProviderError},
		{http.StatusUnauthorized, domain.ErrProviderError},
	}
	for _, tt := range tests {
		p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, `{"error":"nope"}`)
		})
		_, err := p.Chat(context.Background(), domain.ChatRequest{
			Messages: []domain.Message{domain.NewUserMessage("hi")},
		})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestChatUsesProviderModelWhenUnset(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Role: "assistant", Content: "ok"}}},
		})
	})
	if _, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{domain.NewUserMessage("hi")},
	}); err != nil {
		t.Fatal(err)
	}
}
