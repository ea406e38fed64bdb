package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"autochat/internal/domain"
	"autochat/internal/profile"
)

// ToolInvoker executes one tool call within a turn and returns the
// transcript entry for its result.
type ToolInvoker func(ctx context.Context, tc domain.TurnContext, call domain.ToolCall) domain.Message

// PromptMiddleware rewrites the system prompt before each model call.
type PromptMiddleware interface {
	RewritePrompt(tc domain.TurnContext, prompt string) string
}

// ToolMiddleware wraps tool invocation. Middlewares compose in declared
// order: the first entry of the chain observes a call before the rest.
type ToolMiddleware interface {
	WrapTool(next ToolInvoker) ToolInvoker
}

// chainToolMiddleware composes mws around base, preserving declared order.
func chainToolMiddleware(base ToolInvoker, mws []ToolMiddleware) ToolInvoker {
	inv := base
	for i := len(mws) - 1; i >= 0; i-- {
		inv = mws[i].WrapTool(inv)
	}
	return inv
}

// applyPromptMiddleware runs every prompt middleware over prompt in order.
func applyPromptMiddleware(mws []PromptMiddleware, tc domain.TurnContext, prompt string) string {
	for _, mw := range mws {
		prompt = mw.RewritePrompt(tc, prompt)
	}
	return prompt
}

// PersonalizationMiddleware appends a user-context block to the system
// prompt so the model can address the user by name and calibrate advice
// to their profile.
type PersonalizationMiddleware struct {
	Profile profile.Profile
}

// RewritePrompt implements PromptMiddleware.
func (m *PersonalizationMiddleware) RewritePrompt(tc domain.TurnContext, prompt string) string {
	parts := []string{"--- User Context ---"}
	if name := m.Profile.DisplayName(); name != "" {
		parts = append(parts, "Name: "+name)
	}
	if title := m.Profile.Core.BusinessTitle; title != "" {
		parts = append(parts, "Title: "+title)
	}
	if rank := m.Profile.Core.Rank; rank != "" {
		parts = append(parts, "Level: "+rank)
	}
	if skills := topSkillNames(m.Profile, 5); len(skills) > 0 {
		parts = append(parts, "Top Skills: "+strings.Join(skills, ", "))
	}
	parts = append(parts, fmt.Sprintf("Profile Completion: %d%%", tc.CompletionScore))

	if len(parts) == 1 {
		return prompt
	}
	return prompt + "\n\n" + strings.Join(parts, "\n")
}

func topSkillNames(p profile.Profile, limit int) []string {
	names := make([]string, 0, limit)
	for _, s := range p.Skills.Top {
		if s.Name == "" {
			continue
		}
		names = append(names, s.Name)
		if len(names) == limit {
			break
		}
	}
	return names
}

// lowCompletionWarning is injected into match results when the profile is
// too sparse for matching to work well.
const lowCompletionWarning = "Note: Your profile is less than 50% complete. " +
	"Matching could be significantly better with a more complete profile. " +
	"Consider adding skills, experience, or preferences."

// ProfileWarningMiddleware annotates job-match results when the profile
// completion score is below Threshold. It never blocks a call; the model
// stays in charge of which tools run.
type ProfileWarningMiddleware struct {
	Threshold int
}

// WrapTool implements ToolMiddleware.
func (m *ProfileWarningMiddleware) WrapTool(next ToolInvoker) ToolInvoker {
	return func(ctx context.Context, tc domain.TurnContext, call domain.ToolCall) domain.Message {
		msg := next(ctx, tc, call)
		if call.Name != "get_matches" || tc.CompletionScore >= m.Threshold {
			return msg
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil {
			// Non-structured results are left alone.
			return msg
		}
		payload["profile_warning"] = lowCompletionWarning
		annotated, err := json.Marshal(payload)
		if err != nil {
			return msg
		}
		msg.Content = string(annotated)
		return msg
	}
}

// ToolMonitorMiddleware logs every tool call with timing.
type ToolMonitorMiddleware struct {
	Logger *slog.Logger
}

// WrapTool implements ToolMiddleware.
func (m *ToolMonitorMiddleware) WrapTool(next ToolInvoker) ToolInvoker {
	return func(ctx context.Context, tc domain.TurnContext, call domain.ToolCall) domain.Message {
		m.Logger.Info("tool call started", "tool", call.Name)
		start := time.Now()
		msg := next(ctx, tc, call)
		m.Logger.Info("tool call completed",
			"tool", call.Name,
			"elapsed", time.Since(start),
		)
		return msg
	}
}
