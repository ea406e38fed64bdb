package usecase

import (
	"context"
	"log/slog"
	"time"

	"autochat/internal/domain"
)

// Orchestrator routes user turns to specialist workers. Its own model
// decides which worker to call by invoking delegation tools; the
// orchestrator just builds a fresh tool set per turn so each delegation
// sees that turn's context and nothing else.
type Orchestrator struct {
	agent           *Agent
	workers         *Registry
	delegateTimeout time.Duration
	logger          *slog.Logger
	card            domain.AgentCard
}

// NewOrchestrator wires a routing agent to a worker registry.
func NewOrchestrator(agent *Agent, workers *Registry, delegateTimeout time.Duration, card domain.AgentCard, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		agent:           agent,
		workers:         workers,
		delegateTimeout: delegateTimeout,
		logger:          logger,
		card:            card,
	}
}

// Invoke processes one user turn and returns the full transcript.
func (o *Orchestrator) Invoke(ctx context.Context, userMsg string, tc domain.TurnContext) ([]domain.Message, error) {
	tools := NewTurnToolset(o.workers.All(), tc, o.delegateTimeout, o.logger)
	return o.agent.InvokeWithTools(ctx, userMsg, tc, tools)
}

// Card returns the orchestrator's capability descriptor.
func (o *Orchestrator) Card() domain.AgentCard { return o.card }

// Workers exposes the registry for discovery surfaces.
func (o *Orchestrator) Workers() *Registry { return o.workers }
