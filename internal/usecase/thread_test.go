package usecase

import (
	"errors"
	"testing"
	"time"

	"autochat/internal/domain"
)

func TestThreadAddMessageCopies(t *testing.T) {
	th := NewThread("k1")
	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "one"})

	msgs := th.Messages()
	msgs[0].Content = "mutated"

	if th.Messages()[0].Content != "one" {
		t.Error("Messages() must return a copy")
	}
	if th.MessageCount() != 1 {
		t.Errorf("MessageCount() = %d", th.MessageCount())
	}
}

func TestThreadStampsTimestamp(t *testing.T) {
	th := NewThread("k1")
	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "x"})
	if th.Messages()[0].Timestamp.IsZero() {
		t.Error("AddMessage should stamp a zero timestamp")
	}
}

func TestThreadReplaceWithSummary(t *testing.T) {
	th := NewThread("k1")
	for i := 0; i < 6; i++ {
		th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "m"})
	}
	th.ReplaceWithSummary("the gist", 2)

	msgs := th.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected summary + 2 recent, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleSystem {
		t.Errorf("summary role = %q", msgs[0].Role)
	}
}

func TestMemoryStoreGetOrCreate(t *testing.T) {
	s := NewMemoryThreadStore()
	a := s.GetOrCreate("k1")
	b := s.GetOrCreate("k1")
	if a != b {
		t.Error("GetOrCreate should return the same thread for a key")
	}
	if _, err := s.Get("k2"); !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("Get(k2) error = %v, want ErrThreadNotFound", err)
	}
}

func TestMemoryStoreReapStale(t *testing.T) {
	s := NewMemoryThreadStore()
	old := s.GetOrCreate("old")
	old.mu.Lock()
	old.UpdatedAt = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()
	s.GetOrCreate("fresh")

	if n := s.ReapStale(time.Hour); n != 1 {
		t.Fatalf("ReapStale() = %d, want 1", n)
	}
	if _, err := s.Get("old"); err == nil {
		t.Error("stale thread should be gone")
	}
	if _, err := s.Get("fresh"); err != nil {
		t.Error("fresh thread should survive")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryThreadStore()
	s.GetOrCreate("k1")
	if err := s.Delete("k1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k1"); !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}
