package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"autochat/internal/domain"
	"autochat/internal/infra/tracer"

	"go.opentelemetry.io/otel/trace"
)

// DelegateResult is the payload a delegation tool hands back to the
// orchestrator's model: the worker's reply plus its inner tool trace. The
// model consumes it as one opaque string; observability layers can
// deserialize it and recover the nested calls.
type DelegateResult struct {
	Response  string             `json:"response"`
	ToolCalls []DelegateToolCall `json:"tool_calls"`
}

// DelegateToolCall is one tool result produced inside a worker's turn.
// Content holds parsed structured data when the result was serialized
// JSON, else the raw text.
type DelegateToolCall struct {
	Name    string `json:"name"`
	Content any    `json:"content"`
}

// DelegateTool presents a worker agent to the orchestrator's model as an
// ordinary callable tool. Values are built fresh per orchestrator turn
// with that turn's context captured in the struct, so concurrent
// conversations never share delegation state.
type DelegateTool struct {
	worker  *Worker
	parent  domain.TurnContext
	timeout time.Duration
	logger  *slog.Logger
}

// NewDelegateTool binds a worker to one turn's parent context.
func NewDelegateTool(worker *Worker, parent domain.TurnContext, timeout time.Duration, logger *slog.Logger) *DelegateTool {
	return &DelegateTool{
		worker:  worker,
		parent:  parent,
		timeout: timeout,
		logger:  logger,
	}
}

// Name returns the tool name the orchestrator's model calls.
func (t *DelegateTool) Name() string { return t.worker.Name + "_agent" }

// Description returns the worker's advertised purpose.
func (t *DelegateTool) Description() string { return t.worker.Description }

// Schema implements domain.Tool.
func (t *DelegateTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.worker.Description,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"message": {
					"type": "string",
					"description": "The user request to hand to the specialist agent"
				}
			},
			"required": ["message"]
		}`),
	}
}

type delegateParams struct {
	Message string `json:"message"`
}

// Execute invokes the worker with a namespaced sub-thread derived from
// the parent context. Worker failures never propagate as errors; they
// come back as an apology payload so the orchestrator's own reasoning
// survives a specialist crash.
func (t *DelegateTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	ctx, span := tracer.StartSpan(ctx, "delegate.execute",
		trace.WithAttributes(tracer.StringAttr("worker.name", t.worker.Name)),
	)
	defer span.End()

	var p delegateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &domain.ToolResult{
			Content: fmt.Sprintf("invalid parameters: %s", err),
			IsError: true,
		}, nil
	}
	if p.Message == "" {
		return &domain.ToolResult{
			Content: "missing required parameter: message",
			IsError: true,
		}, nil
	}

	childID := domain.ChildThreadID(t.parent.ThreadID, t.worker.Name)
	workerCtx := t.worker.ContextFactory(childID)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	history, err := t.worker.Agent.Invoke(ctx, p.Message, workerCtx)
	if err != nil {
		t.logger.Warn("worker invocation failed",
			"worker", t.worker.Name,
			"thread", childID,
			"error", err,
		)
		tracer.RecordError(span, err)
		return t.faultResult(err)
	}

	turn := CurrentTurn(history)
	payload := DelegateResult{
		Response:  FinalText(turn),
		ToolCalls: innerToolCalls(turn),
	}
	if payload.Response == "" {
		payload.Response = "No response from agent."
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		tracer.RecordError(span, err)
		return t.faultResult(err)
	}

	tracer.SetOK(span)
	return &domain.ToolResult{Content: string(encoded)}, nil
}

// faultResult packages a worker failure as a successful tool result
// naming the worker and the failure kind.
func (t *DelegateTool) faultResult(err error) (*domain.ToolResult, error) {
	payload := DelegateResult{
		Response: fmt.Sprintf(
			"Sorry, the %s agent encountered an error: %s. Please try again.",
			t.worker.Name, domain.ErrorCodeOf(err),
		),
		ToolCalls: []DelegateToolCall{},
	}
	encoded, merr := json.Marshal(payload)
	if merr != nil {
		// The payload contains only strings; this cannot realistically fail.
		encoded = []byte(`{"response":"Sorry, the agent encountered an error. Please try again.","tool_calls":[]}`)
	}
	return &domain.ToolResult{Content: string(encoded)}, nil
}

// innerToolCalls collects the worker turn's tool results. Structured
// results are parsed so the observability layer sees data, not strings.
func innerToolCalls(turn []domain.Message) []DelegateToolCall {
	calls := []DelegateToolCall{}
	for _, m := range ToolMessages(turn) {
		var content any
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			content = m.Content
		}
		calls = append(calls, DelegateToolCall{Name: m.Name, Content: content})
	}
	return calls
}

// TurnToolset is the per-turn tool executor the orchestrator's model
// sees: one delegation tool per registered worker, each bound to the
// turn's parent context.
type TurnToolset struct {
	tools map[string]domain.Tool
	order []string
}

// NewTurnToolset builds delegation tools for every worker, capturing the
// parent turn context in each.
func NewTurnToolset(workers []*Worker, parent domain.TurnContext, timeout time.Duration, logger *slog.Logger) *TurnToolset {
	ts := &TurnToolset{tools: make(map[string]domain.Tool, len(workers))}
	for _, w := range workers {
		dt := NewDelegateTool(w, parent, timeout, logger)
		ts.tools[dt.Name()] = dt
		ts.order = append(ts.order, dt.Name())
	}
	return ts
}

// Get implements domain.ToolExecutor.
func (ts *TurnToolset) Get(name string) (domain.Tool, error) {
	tool, ok := ts.tools[name]
	if !ok {
		return nil, domain.NewDomainError("TurnToolset.Get", domain.ErrToolNotFound, name)
	}
	return tool, nil
}

// Schemas implements domain.ToolExecutor.
func (ts *TurnToolset) Schemas() []domain.ToolSchema {
	schemas := make([]domain.ToolSchema, 0, len(ts.order))
	for _, name := range ts.order {
		schemas = append(schemas, ts.tools[name].Schema())
	}
	return schemas
}
