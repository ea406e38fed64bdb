package domain

import "time"

// TaskState is the lifecycle state of an agent-to-agent task.
type TaskState string

const (
	TaskSubmitted     TaskState = "submitted"
	TaskWorking       TaskState = "working"
	TaskInputRequired TaskState = "input_required"
	TaskCompleted     TaskState = "completed"
	TaskFailed        TaskState = "failed"
)

// Terminal reports whether a task in this state can change state again.
// Cancellation has no state of its own; a canceled task is failed.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskCompleted, TaskFailed:
		return true
	}
	return false
}

// TaskMessage is one entry in a task's message log. Role is "user" for
// requester messages and "agent" for responder messages.
type TaskMessage struct {
	Role     string            `json:"role"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Task is a unit of work sent between agents.
type Task struct {
	ID        string            `json:"id"`
	State     TaskState         `json:"state"`
	Messages  []TaskMessage     `json:"messages"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LastUserMessage returns the most recent user-role entry, or "" if none.
func (t *Task) LastUserMessage() string {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == "user" {
			return t.Messages[i].Content
		}
	}
	return ""
}

// TaskResult is the snapshot returned to the requester after processing.
// Artifacts is part of the wire envelope; no producer fills it yet, so
// it serializes as an empty list.
type TaskResult struct {
	TaskID    string           `json:"task_id"`
	State     TaskState        `json:"state"`
	Messages  []TaskMessage    `json:"messages"`
	Artifacts []map[string]any `json:"artifacts"`
}

// AgentSkill advertises one capability on an agent card.
type AgentSkill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCard is the discovery document an agent publishes to peers.
type AgentCard struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Version     string       `json:"version,omitempty"`
	Skills      []AgentSkill `json:"skills"`
}
