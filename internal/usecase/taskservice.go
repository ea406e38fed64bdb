package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"autochat/internal/domain"
)

// TurnInvoker runs a single conversational turn. Both *Orchestrator and
// *Agent invocations satisfy it, so a task service can front either the
// router or one specialist directly.
type TurnInvoker func(ctx context.Context, userMsg string, tc domain.TurnContext) ([]domain.Message, error)

// TaskService exposes an agent through the request/response task
// lifecycle for callers that do not want to drive the agent loop
// directly. Tasks live in an in-memory table until the janitor evicts
// them by age.
type TaskService struct {
	mu      sync.RWMutex
	card    domain.AgentCard
	invoke  TurnInvoker
	factory domain.ContextFactory
	tasks   map[string]*domain.Task
	timeout time.Duration
	logger  *slog.Logger
}

// NewTaskService creates a task service fronting the given invoker.
func NewTaskService(card domain.AgentCard, invoke TurnInvoker, factory domain.ContextFactory, timeout time.Duration, logger *slog.Logger) *TaskService {
	return &TaskService{
		card:    card,
		invoke:  invoke,
		factory: factory,
		tasks:   make(map[string]*domain.Task),
		timeout: timeout,
		logger:  logger,
	}
}

// Card returns the advertised capability descriptor.
func (s *TaskService) Card() domain.AgentCard { return s.card }

// SendTask processes a task through its lifecycle and returns the final
// snapshot. Failures are encoded in the task state, never returned as
// errors; the protocol caller always gets a coherent result.
func (s *TaskService) SendTask(ctx context.Context, task *domain.Task) *domain.TaskResult {
	if task.ID == "" {
		task.ID = generateULID(time.Now())
	}
	now := time.Now()
	task.State = domain.TaskSubmitted
	task.CreatedAt = now
	task.UpdatedAt = now

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	userMsg := task.LastUserMessage()
	if userMsg == "" {
		s.transition(task, domain.TaskFailed, domain.TaskMessage{
			Role:    "agent",
			Content: "No user message found.",
		})
		return s.result(task)
	}

	s.transition(task, domain.TaskWorking, domain.TaskMessage{})

	threadID := task.Metadata["thread_id"]
	if threadID == "" {
		threadID = task.ID
	}
	tc := s.factory(threadID)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	history, err := s.invoke(ctx, userMsg, tc)
	if err != nil {
		s.logger.Warn("task failed", "task", task.ID, "error", err)
		s.transition(task, domain.TaskFailed, domain.TaskMessage{
			Role:    "agent",
			Content: fmt.Sprintf("Error: %s", err),
		})
		return s.result(task)
	}

	reply := FinalText(CurrentTurn(history))
	s.transition(task, domain.TaskCompleted, domain.TaskMessage{
		Role:    "agent",
		Content: reply,
	})
	return s.result(task)
}

// GetTaskStatus returns the current state of a task.
func (s *TaskService) GetTaskStatus(id string) (domain.TaskState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return "", domain.NewDomainError("TaskService.GetTaskStatus", domain.ErrTaskNotFound, id)
	}
	return task.State, nil
}

// GetTask returns a task by id.
func (s *TaskService) GetTask(id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.NewDomainError("TaskService.GetTask", domain.ErrTaskNotFound, id)
	}
	return task, nil
}

// CancelTask fails a live task. Unknown ids and tasks already in a
// terminal state report false rather than raising.
func (s *TaskService) CancelTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.State.Terminal() {
		return false
	}
	task.State = domain.TaskFailed
	task.UpdatedAt = time.Now()
	return true
}

// ReapTasks drops tasks not updated within maxAge and returns the count.
func (s *TaskService) ReapTasks(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, task := range s.tasks {
		if task.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			reaped++
		}
	}
	return reaped
}

// transition advances a task's state. Terminal states are final: a task
// that already completed or failed is left untouched.
func (s *TaskService) transition(task *domain.Task, state domain.TaskState, msg domain.TaskMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.State.Terminal() {
		return
	}
	task.State = state
	task.UpdatedAt = time.Now()
	if msg.Content != "" {
		task.Messages = append(task.Messages, msg)
	}
}

// result snapshots the task for the protocol response.
func (s *TaskService) result(task *domain.Task) *domain.TaskResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]domain.TaskMessage, len(task.Messages))
	copy(msgs, task.Messages)
	return &domain.TaskResult{
		TaskID:    task.ID,
		State:     task.State,
		Messages:  msgs,
		Artifacts: []map[string]any{},
	}
}
