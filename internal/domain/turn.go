package domain

import "fmt"

// TurnContext carries per-invocation conversation state. A fresh value is
// built for every turn and handed down the call chain explicitly, so two
// concurrent turns never observe each other's state.
type TurnContext struct {
	// ThreadID identifies the conversation history this turn belongs to.
	// Empty means the turn runs against an ephemeral, unsaved history.
	ThreadID string

	// Display fields used by prompt middleware for personalization.
	FirstName string
	FullName  string

	// CompletionScore is the user's profile completion percentage, 0-100.
	// Defaults to 100 when no profile data is available.
	CompletionScore int
}

// ContextFactory builds the turn context a worker agent runs under, given
// the thread id derived for its delegated sub-conversation.
type ContextFactory func(threadID string) TurnContext

// ChildThreadID derives the history namespace for a worker's delegated
// turn. Each parent/worker pair maps to a stable child id so repeated
// delegations to the same worker share one sub-conversation, while
// different workers stay isolated from each other and from the parent.
func ChildThreadID(parentID, worker string) string {
	if parentID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", parentID, worker)
}
