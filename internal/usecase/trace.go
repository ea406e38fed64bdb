package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"autochat/internal/domain"
)

// CurrentTurn slices a full history down to the entries of the latest
// turn, starting at the most recent user message. Shared checkpoint loads
// reintroduce prior turns into the history; slicing keeps a prior turn's
// tool results out of the current turn's trace.
func CurrentTurn(msgs []domain.Message) []domain.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleUser {
			return msgs[i:]
		}
	}
	return msgs
}

// FinalText returns the user-visible answer of a turn: the content of the
// last assistant message that requested no further tool calls.
func FinalText(msgs []domain.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Role == domain.RoleAssistant && len(m.ToolCalls) == 0 {
			return m.Content
		}
	}
	return ""
}

// ToolMessages returns every tool-result entry of a transcript in order.
func ToolMessages(msgs []domain.Message) []domain.Message {
	var out []domain.Message
	for _, m := range msgs {
		if m.Role == domain.RoleTool {
			out = append(out, m)
		}
	}
	return out
}

// FormatTrace renders a turn's transcript as an indented human-readable
// trace, expanding delegated worker results so their nested tool calls
// are visible to the reader.
func FormatTrace(msgs []domain.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleUser:
			fmt.Fprintf(&sb, "user: %s\n", m.Content)
		case domain.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				for _, call := range m.ToolCalls {
					fmt.Fprintf(&sb, "assistant -> %s(%s)\n", call.Name, compactJSON(call.Arguments))
				}
			} else {
				fmt.Fprintf(&sb, "assistant: %s\n", m.Content)
			}
		case domain.RoleTool:
			writeToolResult(&sb, m)
		}
	}
	return sb.String()
}

// writeToolResult prints one tool result. Delegation payloads carry a
// nested trace; those get unwrapped and indented one level deeper.
func writeToolResult(sb *strings.Builder, m domain.Message) {
	var dr DelegateResult
	if err := json.Unmarshal([]byte(m.Content), &dr); err == nil && dr.Response != "" {
		fmt.Fprintf(sb, "  %s: %s\n", m.Name, dr.Response)
		for _, inner := range dr.ToolCalls {
			content, merr := json.Marshal(inner.Content)
			if merr != nil {
				content = []byte(fmt.Sprintf("%v", inner.Content))
			}
			fmt.Fprintf(sb, "    tool %s: %s\n", inner.Name, string(content))
		}
		return
	}
	fmt.Fprintf(sb, "  tool %s: %s\n", m.Name, m.Content)
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
