package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"autochat/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// llmStep is one scripted model response (or failure).
type llmStep struct {
	msg domain.Message
	err error
}

func assistantReply(content string) llmStep {
	return llmStep{msg: domain.Message{Role: domain.RoleAssistant, Content: content}}
}

func assistantCalls(calls ...domain.ToolCall) llmStep {
	return llmStep{msg: domain.Message{Role: domain.RoleAssistant, ToolCalls: calls}}
}

// scriptedLLM replays a fixed sequence of responses and records every
// request it receives.
type scriptedLLM struct {
	mu    sync.Mutex
	steps []llmStep
	calls []domain.ChatRequest
}

func (l *scriptedLLM) Name() string { return "scripted" }

func (l *scriptedLLM) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, req)
	if len(l.steps) == 0 {
		return &domain.ChatResponse{
			Message: domain.Message{Role: domain.RoleAssistant, Content: "done"},
		}, nil
	}
	step := l.steps[0]
	l.steps = l.steps[1:]
	if step.err != nil {
		return nil, step.err
	}
	return &domain.ChatResponse{
		Message: step.msg,
		Usage:   domain.Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	}, nil
}

func (l *scriptedLLM) requests() []domain.ChatRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]domain.ChatRequest, len(l.calls))
	copy(cp, l.calls)
	return cp
}

// fakeTool is a tool backed by a plain function.
type fakeTool struct {
	name string
	fn   func(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error)
}

func (t *fakeTool) Name() string        { return t.name }
func (t *fakeTool) Description() string { return "test tool " + t.name }

func (t *fakeTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.name,
		Description: t.Description(),
		Parameters:  json.RawMessage(`{"type":"object"}`),
	}
}

func (t *fakeTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return t.fn(ctx, params)
}

// staticToolset is a fixed ToolExecutor over a tool list.
type staticToolset struct {
	tools []domain.Tool
}

func (s *staticToolset) Get(name string) (domain.Tool, error) {
	for _, t := range s.tools {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, domain.NewDomainError("staticToolset.Get", domain.ErrToolNotFound, name)
}

func (s *staticToolset) Schemas() []domain.ToolSchema {
	schemas := make([]domain.ToolSchema, 0, len(s.tools))
	for _, t := range s.tools {
		schemas = append(schemas, t.Schema())
	}
	return schemas
}

// fixedCounter reports a constant token count per message.
type fixedCounter struct {
	perMessage int
}

func (c *fixedCounter) CountMessages(msgs []domain.Message) int {
	return len(msgs) * c.perMessage
}

func newTestAgent(name string, llm domain.LLMProvider, tools domain.ToolExecutor, store ThreadStore) *Agent {
	if store == nil {
		store = NewMemoryThreadStore()
	}
	return NewAgent(name, AgentDeps{
		LLM:           llm,
		Tools:         tools,
		Threads:       store,
		Logger:        newTestLogger(),
		SystemPrompt:  "You are a test agent.",
		Model:         "test-model",
		MaxIterations: 5,
	})
}
