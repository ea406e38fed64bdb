package usecase

import (
	"time"

	"autochat/internal/domain"
)

// RepairHistory fixes broken tool chains in a checkpointed history before
// it is sent to the model:
//  1. an assistant message with tool calls but no matching tool result
//     gets an error result injected;
//  2. a tool result with no preceding matching call is dropped.
//
// Interrupted turns leave both kinds of damage behind, and providers
// reject histories with dangling calls. Returns a new slice.
func RepairHistory(messages []domain.Message) []domain.Message {
	if len(messages) == 0 {
		return messages
	}

	result := make([]domain.Message, 0, len(messages))
	pending := make(map[string]domain.ToolCall) // call ID -> call

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleAssistant:
			result = injectMissingResults(result, pending)
			clear(pending)
			for _, tc := range msg.ToolCalls {
				if tc.ID != "" {
					pending[tc.ID] = tc
				}
			}
			result = append(result, msg)

		case domain.RoleTool:
			callID := toolResultCallID(msg)
			if callID == "" {
				continue
			}
			if _, ok := pending[callID]; !ok {
				continue
			}
			delete(pending, callID)
			result = append(result, msg)

		default:
			// User or system messages start a new turn; settle pending calls.
			result = injectMissingResults(result, pending)
			clear(pending)
			result = append(result, msg)
		}
	}

	return injectMissingResults(result, pending)
}

// injectMissingResults appends an error tool result for each pending call.
func injectMissingResults(msgs []domain.Message, pending map[string]domain.ToolCall) []domain.Message {
	for id, tc := range pending {
		msgs = append(msgs, domain.Message{
			Role:    domain.RoleTool,
			Name:    tc.Name,
			Content: "[error] tool call did not produce a result",
			ToolCalls: []domain.ToolCall{{
				ID:   id,
				Name: tc.Name,
			}},
			Timestamp: time.Now(),
		})
	}
	return msgs
}

func toolResultCallID(msg domain.Message) string {
	if len(msg.ToolCalls) > 0 {
		return msg.ToolCalls[0].ID
	}
	return ""
}
