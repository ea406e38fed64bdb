package usecase

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"autochat/internal/domain"
)

// Thread is one persisted conversation history, keyed by a caller-supplied
// thread id. Worker sub-conversations get their own Thread under a
// namespaced key, so a worker never sees its parent's history.
type Thread struct {
	mu        sync.RWMutex
	ID        string           `json:"id"` // ULID, globally unique
	Key       string           `json:"key"`
	Msgs      []domain.Message `json:"messages"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewThread creates an empty thread for the given key. An empty key marks
// an ephemeral thread that is never persisted.
func NewThread(key string) *Thread {
	now := time.Now()
	return &Thread{
		ID:        generateULID(now),
		Key:       key,
		Msgs:      make([]domain.Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// AddMessage appends a message and updates the timestamp (thread-safe).
func (t *Thread) AddMessage(msg domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	t.Msgs = append(t.Msgs, msg)
	t.UpdatedAt = time.Now()
}

// Messages returns a copy of the message history (thread-safe).
func (t *Thread) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := make([]domain.Message, len(t.Msgs))
	copy(cp, t.Msgs)
	return cp
}

// MessageCount returns the number of stored messages.
func (t *Thread) MessageCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Msgs)
}

// LastUpdated returns the time of the most recent modification.
func (t *Thread) LastUpdated() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.UpdatedAt
}

// ReplaceWithSummary collapses everything except the last keepRecent
// messages into a single summary message at the head of the history.
func (t *Thread) ReplaceWithSummary(summary string, keepRecent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Msgs) <= keepRecent {
		return
	}
	recent := t.Msgs[len(t.Msgs)-keepRecent:]
	compacted := make([]domain.Message, 0, keepRecent+1)
	compacted = append(compacted, domain.Message{
		Role:      domain.RoleSystem,
		Content:   "Summary of the earlier conversation:\n" + summary,
		Timestamp: time.Now(),
	})
	compacted = append(compacted, recent...)
	t.Msgs = compacted
	t.UpdatedAt = time.Now()
}

// ThreadStore persists conversation histories keyed by thread id. Callers
// must serialize access per key; stores only guarantee their own internal
// consistency, not turn-level ordering.
type ThreadStore interface {
	GetOrCreate(key string) *Thread
	Get(key string) (*Thread, error)
	Save(key string) error
	Delete(key string) error
	List() []string
	ReapStale(maxAge time.Duration) int
}

// MemoryThreadStore is the in-memory ThreadStore used by default and in tests.
type MemoryThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

// NewMemoryThreadStore creates an empty in-memory store.
func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{threads: make(map[string]*Thread)}
}

// GetOrCreate returns the existing thread for key or creates a new one.
func (s *MemoryThreadStore) GetOrCreate(key string) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.threads[key]; ok {
		return t
	}
	t := NewThread(key)
	s.threads[key] = t
	return t
}

// Get returns an existing thread or ErrThreadNotFound.
func (s *MemoryThreadStore) Get(key string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[key]
	if !ok {
		return nil, domain.NewDomainError("MemoryThreadStore.Get", domain.ErrThreadNotFound, key)
	}
	return t, nil
}

// Save is a no-op; the in-memory store has no durable form.
func (s *MemoryThreadStore) Save(key string) error { return nil }

// Delete removes a thread.
func (s *MemoryThreadStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[key]; !ok {
		return domain.NewDomainError("MemoryThreadStore.Delete", domain.ErrThreadNotFound, key)
	}
	delete(s.threads, key)
	return nil
}

// List returns all thread keys.
func (s *MemoryThreadStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.threads))
	for k := range s.threads {
		keys = append(keys, k)
	}
	return keys
}

// ReapStale deletes threads not updated within maxAge and returns the count.
func (s *MemoryThreadStore) ReapStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.RLock()
	var stale []string
	for key, t := range s.threads {
		t.mu.RLock()
		old := t.UpdatedAt.Before(cutoff)
		t.mu.RUnlock()
		if old {
			stale = append(stale, key)
		}
	}
	s.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}

	s.mu.Lock()
	for _, key := range stale {
		delete(s.threads, key)
	}
	s.mu.Unlock()
	return len(stale)
}
