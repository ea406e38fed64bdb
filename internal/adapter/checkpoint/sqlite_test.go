package checkpoint

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"autochat/internal/domain"
)

func newTestStore(t *testing.T) (*SQLiteThreadStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "threads.db")
	store, err := NewSQLiteThreadStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteThreadStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestSQLiteThreadStoreSaveAndReload(t *testing.T) {
	store, dbPath := newTestStore(t)

	th := store.GetOrCreate("sess-1")
	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "hello"})
	th.AddMessage(domain.Message{Role: domain.RoleAssistant, Content: "hi there"})
	if err := store.Save("sess-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	// A fresh store sees the persisted history.
	reopened, err := NewSQLiteThreadStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("sess-1")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.ID != th.ID {
		t.Errorf("ID = %q, want %q", got.ID, th.ID)
	}
	msgs := got.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Content != "hello" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Content != "hi there" {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
}

func TestSQLiteThreadStoreGetOrCreateReturnsSameThread(t *testing.T) {
	store, _ := newTestStore(t)

	a := store.GetOrCreate("sess-1")
	b := store.GetOrCreate("sess-1")
	if a != b {
		t.Error("expected the same live thread for repeated GetOrCreate")
	}
}

func TestSQLiteThreadStoreGetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get("missing")
	if !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestSQLiteThreadStoreSaveUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Save("missing")
	if !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestSQLiteThreadStoreSaveEphemeral(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Save(""); err != nil {
		t.Errorf("Save of ephemeral thread should be a no-op, got %v", err)
	}
}

func TestSQLiteThreadStoreSaveIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	th := store.GetOrCreate("sess-1")
	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "one"})
	if err := store.Save("sess-1"); err != nil {
		t.Fatal(err)
	}

	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "two"})
	if err := store.Save("sess-1"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.MessageCount() != 2 {
		t.Errorf("expected 2 messages after second save, got %d", got.MessageCount())
	}
}

func TestSQLiteThreadStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)

	store.GetOrCreate("sess-1").AddMessage(domain.Message{Role: domain.RoleUser, Content: "x"})
	if err := store.Save("sess-1"); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("sess-1"); !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("expected ErrThreadNotFound after delete, got %v", err)
	}

	if err := store.Delete("sess-1"); !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("expected ErrThreadNotFound for second delete, got %v", err)
	}
}

func TestSQLiteThreadStoreList(t *testing.T) {
	store, _ := newTestStore(t)

	store.GetOrCreate("live-only")
	store.GetOrCreate("saved")
	if err := store.Save("saved"); err != nil {
		t.Fatal(err)
	}

	keys := store.List()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	if !seen["live-only"] || !seen["saved"] {
		t.Errorf("keys = %v", keys)
	}
}

func TestSQLiteThreadStoreReapStale(t *testing.T) {
	store, _ := newTestStore(t)

	old := store.GetOrCreate("old")
	old.AddMessage(domain.Message{Role: domain.RoleUser, Content: "x"})
	if err := store.Save("old"); err != nil {
		t.Fatal(err)
	}

	fresh := store.GetOrCreate("fresh")
	fresh.AddMessage(domain.Message{Role: domain.RoleUser, Content: "y"})
	if err := store.Save("fresh"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	fresh.AddMessage(domain.Message{Role: domain.RoleUser, Content: "still here"})

	n := store.ReapStale(10 * time.Millisecond)
	if n != 1 {
		t.Errorf("reaped = %d, want 1", n)
	}
	if _, err := store.Get("old"); !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("old thread should be gone, got %v", err)
	}
	if _, err := store.Get("fresh"); err != nil {
		t.Errorf("fresh thread should survive: %v", err)
	}
}

func TestSQLiteThreadStoreLiveCopyWinsOverStaleRow(t *testing.T) {
	store, _ := newTestStore(t)

	th := store.GetOrCreate("sess-1")
	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "x"})
	if err := store.Save("sess-1"); err != nil {
		t.Fatal(err)
	}

	// Touch the live thread after the persisted row would have aged out.
	time.Sleep(20 * time.Millisecond)
	th.AddMessage(domain.Message{Role: domain.RoleUser, Content: "recent"})

	if n := store.ReapStale(10 * time.Millisecond); n != 0 {
		t.Errorf("reaped = %d, want 0", n)
	}
	if _, err := store.Get("sess-1"); err != nil {
		t.Errorf("thread should survive while its live copy is fresh: %v", err)
	}
}
