package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"autochat/internal/domain"
)

func newTaskService(invoke TurnInvoker) *TaskService {
	card := domain.AgentCard{Name: "test-agent", Version: "1.0.0"}
	factory := func(threadID string) domain.TurnContext {
		return domain.TurnContext{ThreadID: threadID}
	}
	return NewTaskService(card, invoke, factory, 0, newTestLogger())
}

func echoInvoker(ctx context.Context, userMsg string, tc domain.TurnContext) ([]domain.Message, error) {
	return []domain.Message{
		domain.NewUserMessage(userMsg),
		domain.NewAssistantMessage("echo: " + userMsg),
	}, nil
}

func TestSendTaskCompletes(t *testing.T) {
	svc := newTaskService(echoInvoker)

	task := &domain.Task{
		Messages: []domain.TaskMessage{{Role: "user", Content: "hello"}},
	}
	res := svc.SendTask(context.Background(), task)

	if res.State != domain.TaskCompleted {
		t.Fatalf("state = %q, want completed", res.State)
	}
	if res.TaskID == "" {
		t.Error("expected an assigned task id")
	}
	last := res.Messages[len(res.Messages)-1]
	if last.Role != "agent" || last.Content != "echo: hello" {
		t.Errorf("agent message = %+v", last)
	}
	if res.Artifacts == nil || len(res.Artifacts) != 0 {
		t.Errorf("artifacts = %v, want an empty list on the wire", res.Artifacts)
	}
}

func TestSendTaskWithoutUserMessageFails(t *testing.T) {
	svc := newTaskService(echoInvoker)

	task := &domain.Task{
		ID:       "t-1",
		Messages: []domain.TaskMessage{{Role: "agent", Content: "leftover"}},
	}
	res := svc.SendTask(context.Background(), task)

	if res.State != domain.TaskFailed {
		t.Fatalf("state = %q, want failed", res.State)
	}
	last := res.Messages[len(res.Messages)-1]
	if last.Content != "No user message found." {
		t.Errorf("failure message = %q", last.Content)
	}
}

func TestSendTaskInvokerErrorFails(t *testing.T) {
	svc := newTaskService(func(ctx context.Context, userMsg string, tc domain.TurnContext) ([]domain.Message, error) {
		return nil, domain.NewDomainError("test", domain.ErrProviderError, "boom")
	})

	task := &domain.Task{Messages: []domain.TaskMessage{{Role: "user", Content: "hi"}}}
	res := svc.SendTask(context.Background(), task)

	if res.State != domain.TaskFailed {
		t.Fatalf("state = %q, want failed", res.State)
	}
	last := res.Messages[len(res.Messages)-1]
	if last.Role != "agent" {
		t.Errorf("role = %q", last.Role)
	}
}

func TestSendTaskUsesMetadataThreadID(t *testing.T) {
	var seen string
	svc := newTaskService(func(ctx context.Context, userMsg string, tc domain.TurnContext) ([]domain.Message, error) {
		seen = tc.ThreadID
		return echoInvoker(ctx, userMsg, tc)
	})

	task := &domain.Task{
		Messages: []domain.TaskMessage{{Role: "user", Content: "hi"}},
		Metadata: map[string]string{"thread_id": "sess-7"},
	}
	svc.SendTask(context.Background(), task)

	if seen != "sess-7" {
		t.Errorf("thread id = %q, want sess-7", seen)
	}
}

func TestGetTaskStatus(t *testing.T) {
	svc := newTaskService(echoInvoker)
	task := &domain.Task{Messages: []domain.TaskMessage{{Role: "user", Content: "hi"}}}
	res := svc.SendTask(context.Background(), task)

	state, err := svc.GetTaskStatus(res.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if state != domain.TaskCompleted {
		t.Errorf("state = %q", state)
	}

	if _, err := svc.GetTaskStatus("missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("error = %v, want ErrTaskNotFound", err)
	}
}

func TestCancelTask(t *testing.T) {
	svc := newTaskService(echoInvoker)

	if svc.CancelTask("missing") {
		t.Error("canceling an unknown task must report false")
	}

	task := &domain.Task{Messages: []domain.TaskMessage{{Role: "user", Content: "hi"}}}
	res := svc.SendTask(context.Background(), task)
	if svc.CancelTask(res.TaskID) {
		t.Error("canceling a completed task must report false")
	}

	got, err := svc.GetTask(res.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != domain.TaskCompleted {
		t.Errorf("terminal state changed to %q", got.State)
	}

	// A canceled live task lands in failed; there is no separate state.
	live := &domain.Task{ID: "live-1", State: domain.TaskWorking}
	svc.tasks[live.ID] = live
	if !svc.CancelTask(live.ID) {
		t.Error("canceling a working task must report true")
	}
	if state, _ := svc.GetTaskStatus(live.ID); state != domain.TaskFailed {
		t.Errorf("canceled task state = %q, want %q", state, domain.TaskFailed)
	}
}

func TestReapTasks(t *testing.T) {
	svc := newTaskService(echoInvoker)

	for i := 0; i < 3; i++ {
		task := &domain.Task{Messages: []domain.TaskMessage{{Role: "user", Content: "hi"}}}
		svc.SendTask(context.Background(), task)
	}

	if n := svc.ReapTasks(time.Hour); n != 0 {
		t.Errorf("reaped %d fresh tasks", n)
	}

	svc.mu.Lock()
	for _, task := range svc.tasks {
		task.UpdatedAt = time.Now().Add(-2 * time.Hour)
	}
	svc.mu.Unlock()

	if n := svc.ReapTasks(time.Hour); n != 3 {
		t.Errorf("reaped %d, want 3", n)
	}
	if _, err := svc.GetTask("any"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("error = %v", err)
	}
}
