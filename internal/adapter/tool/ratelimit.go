package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"autochat/internal/domain"
)

// RateLimitedTool wraps a Tool with a token bucket. Calls over the limit
// return an error result rather than blocking the agent loop.
type RateLimitedTool struct {
	inner   domain.Tool
	limiter *rate.Limiter
}

// WithRateLimit wraps t so at most callsPerMinute executions are allowed
// per minute, with a burst of the same size.
func WithRateLimit(t domain.Tool, callsPerMinute int) *RateLimitedTool {
	if callsPerMinute <= 0 {
		callsPerMinute = 60
	}
	return &RateLimitedTool{
		inner:   t,
		limiter: rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute),
	}
}

func (r *RateLimitedTool) Name() string              { return r.inner.Name() }
func (r *RateLimitedTool) Description() string       { return r.inner.Description() }
func (r *RateLimitedTool) Schema() domain.ToolSchema { return r.inner.Schema() }

func (r *RateLimitedTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	if !r.limiter.Allow() {
		return &domain.ToolResult{
			IsError: true,
			Content: fmt.Sprintf("rate limit exceeded for tool %q, try again shortly", r.inner.Name()),
		}, nil
	}
	return r.inner.Execute(ctx, params)
}
