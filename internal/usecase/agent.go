package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"autochat/internal/domain"
	"autochat/internal/infra/tracer"
)

// AgentDeps holds injected dependencies for an agent.
type AgentDeps struct {
	LLM           domain.LLMProvider
	Tools         domain.ToolExecutor // nil = agent has no tools of its own
	Threads       ThreadStore
	Logger        *slog.Logger
	SystemPrompt  string
	Model         string
	MaxIterations int
	MaxHistory    int              // history window sent to the model; 0 = unbounded
	PromptMW      []PromptMiddleware
	ToolMW        []ToolMiddleware
	Compressor    *Compressor   // optional, nil = no compression
	Guard         *ContextGuard // optional, nil = no context window guard
}

// Agent runs the receive-think-act loop for one configured model, prompt,
// and tool set. Tool lists and prompts are fixed at construction; only the
// turn context varies per call. Callers must serialize calls per thread id.
type Agent struct {
	name string
	deps AgentDeps
}

// NewAgent creates an agent with the given dependencies.
func NewAgent(name string, deps AgentDeps) *Agent {
	if deps.MaxIterations <= 0 {
		deps.MaxIterations = 10
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Agent{name: name, deps: deps}
}

// Name returns the agent's registered name.
func (a *Agent) Name() string { return a.name }

// Schemas lists the agent's own tool schemas, or nil for a tool-less agent.
func (a *Agent) Schemas() []domain.ToolSchema {
	if a.deps.Tools == nil {
		return nil
	}
	return a.deps.Tools.Schemas()
}

// Invoke processes one user message and returns the thread's full message
// history including the new turn. Callers slice to the current turn with
// CurrentTurn when they only want this turn's trace.
func (a *Agent) Invoke(ctx context.Context, userMsg string, tc domain.TurnContext) ([]domain.Message, error) {
	return a.invoke(ctx, userMsg, tc, a.deps.Tools)
}

// InvokeWithTools runs one turn against a caller-supplied tool set. The
// orchestrator uses this to hand each turn a fresh set of delegation
// tools bound to that turn's context.
func (a *Agent) InvokeWithTools(ctx context.Context, userMsg string, tc domain.TurnContext, tools domain.ToolExecutor) ([]domain.Message, error) {
	return a.invoke(ctx, userMsg, tc, tools)
}

func (a *Agent) invoke(ctx context.Context, userMsg string, tc domain.TurnContext, tools domain.ToolExecutor) ([]domain.Message, error) {
	ctx, span := tracer.StartSpan(ctx, "agent.invoke",
		trace.WithAttributes(
			tracer.StringAttr("agent.name", a.name),
			tracer.StringAttr("thread.id", tc.ThreadID),
		),
	)
	defer span.End()

	// An empty thread id means the turn runs against a throwaway history.
	var thread *Thread
	if tc.ThreadID == "" {
		thread = NewThread("")
	} else {
		thread = a.deps.Threads.GetOrCreate(tc.ThreadID)
	}

	thread.AddMessage(domain.Message{
		Role:      domain.RoleUser,
		Content:   userMsg,
		Timestamp: time.Now(),
	})

	if a.deps.Guard != nil {
		if err := a.deps.Guard.Check(ctx, thread); err != nil {
			tracer.RecordError(span, err)
			return nil, err
		}
	}

	invoker := chainToolMiddleware(a.executeTool(tools), a.deps.ToolMW)

	for i := 0; i < a.deps.MaxIterations; i++ {
		span.AddEvent("agent.iteration", trace.WithAttributes(tracer.IntAttr("iteration", i)))

		req := a.buildRequest(tc, thread, tools)

		llmCtx, llmSpan := tracer.StartSpan(ctx, "agent.llm_call")
		resp, err := a.deps.LLM.Chat(llmCtx, req)
		llmSpan.End()
		if err != nil {
			tracer.RecordError(span, err)
			return nil, domain.WrapOp("Agent.Invoke", err)
		}

		msg := resp.Message
		thread.AddMessage(msg)

		a.deps.Logger.Debug("llm response",
			"agent", a.name,
			"iteration", i,
			"tool_calls", len(msg.ToolCalls),
			"tokens", resp.Usage.TotalTokens,
		)

		// No tool calls = final response for this turn.
		if len(msg.ToolCalls) == 0 {
			if a.deps.Compressor != nil && a.deps.Compressor.ShouldCompress(thread) {
				if err := a.deps.Compressor.Compress(ctx, thread); err != nil {
					a.deps.Logger.Warn("compression failed", "error", err)
				}
			}
			a.save(tc.ThreadID)
			tracer.SetOK(span)
			return thread.Messages(), nil
		}

		// Distinct tools execute in parallel. Repeated calls to one tool
		// run sequentially in request order: a delegation tool drives a
		// single sub-thread per turn, and that thread's history must not
		// interleave. Results land in an indexed slice so the transcript
		// preserves the model's requested order.
		toolMsgs := make([]domain.Message, len(msg.ToolCalls))
		byName := make(map[string][]int, len(msg.ToolCalls))
		for idx, call := range msg.ToolCalls {
			byName[call.Name] = append(byName[call.Name], idx)
		}
		var wg sync.WaitGroup
		for _, idxs := range byName {
			wg.Add(1)
			go func(idxs []int) {
				defer wg.Done()
				for _, idx := range idxs {
					toolMsgs[idx] = invoker(ctx, tc, msg.ToolCalls[idx])
				}
			}(idxs)
		}
		wg.Wait()
		for _, toolMsg := range toolMsgs {
			thread.AddMessage(toolMsg)
		}

		if a.deps.Guard != nil {
			if err := a.deps.Guard.Check(ctx, thread); err != nil {
				tracer.RecordError(span, err)
				return nil, err
			}
		}
	}

	tracer.RecordError(span, domain.ErrMaxIterations)
	return nil, domain.NewDomainError("Agent.Invoke", domain.ErrMaxIterations, a.name)
}

// buildRequest assembles the chat request: middleware-rewritten system
// prompt, the history window, and the turn's tool schemas.
func (a *Agent) buildRequest(tc domain.TurnContext, thread *Thread, tools domain.ToolExecutor) domain.ChatRequest {
	prompt := applyPromptMiddleware(a.deps.PromptMW, tc, a.deps.SystemPrompt)

	history := RepairHistory(thread.Messages())
	if a.deps.MaxHistory > 0 && len(history) > a.deps.MaxHistory {
		history = history[len(history)-a.deps.MaxHistory:]
	}

	msgs := make([]domain.Message, 0, len(history)+1)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: prompt})
	msgs = append(msgs, history...)

	req := domain.ChatRequest{
		Model:    a.deps.Model,
		Messages: msgs,
	}
	if tools != nil {
		req.Tools = tools.Schemas()
	}
	return req
}

// executeTool is the base invoker middleware wraps around. Tool failures
// become tool-role messages rather than errors so the model can read and
// react to them.
func (a *Agent) executeTool(tools domain.ToolExecutor) ToolInvoker {
	return func(ctx context.Context, tc domain.TurnContext, call domain.ToolCall) domain.Message {
		ctx, span := tracer.StartSpan(ctx, "agent.execute_tool",
			trace.WithAttributes(tracer.StringAttr("tool.name", call.Name)),
		)
		defer span.End()

		toolMsg := func(content string) domain.Message {
			return domain.Message{
				Role:    domain.RoleTool,
				Name:    call.Name,
				Content: content,
				ToolCalls: []domain.ToolCall{{
					ID:   call.ID,
					Name: call.Name,
				}},
				Timestamp: time.Now(),
			}
		}

		if tools == nil {
			err := domain.NewDomainError("Agent.executeTool", domain.ErrToolNotFound, call.Name)
			tracer.RecordError(span, err)
			return toolMsg(err.Error())
		}

		tool, err := tools.Get(call.Name)
		if err != nil {
			tracer.RecordError(span, err)
			return toolMsg(err.Error())
		}

		result, err := tool.Execute(ctx, call.Arguments)
		if err != nil {
			tracer.RecordError(span, err)
			return toolMsg(err.Error())
		}

		tracer.SetOK(span)
		return toolMsg(result.Content)
	}
}

// save checkpoints the thread, logging rather than failing the turn when
// the store misbehaves.
func (a *Agent) save(key string) {
	if key == "" {
		return
	}
	if err := a.deps.Threads.Save(key); err != nil {
		a.deps.Logger.Warn("thread checkpoint failed", "thread", key, "error", err)
	}
}
