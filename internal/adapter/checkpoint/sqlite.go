// Package checkpoint persists conversation threads across restarts.
package checkpoint

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"autochat/internal/domain"
	"autochat/internal/usecase"
)

// SQLiteThreadStore implements usecase.ThreadStore backed by SQLite.
// Live threads are held in memory; Save writes them through to disk, so
// a crash loses at most the turns since the last Save.
type SQLiteThreadStore struct {
	db    *sql.DB
	mu    sync.Mutex
	cache map[string]*usecase.Thread
}

// NewSQLiteThreadStore opens (or creates) a SQLite database at dbPath
// and runs the schema migration.
func NewSQLiteThreadStore(dbPath string) (*SQLiteThreadStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open thread db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate thread db: %w", err)
	}
	return &SQLiteThreadStore{
		db:    db,
		cache: make(map[string]*usecase.Thread),
	}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS threads (
			key        TEXT PRIMARY KEY,
			id         TEXT NOT NULL,
			messages   TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteThreadStore) Close() error {
	return s.db.Close()
}

// GetOrCreate returns the live thread for key, loading it from disk on
// first access or creating it if it has never been saved.
func (s *SQLiteThreadStore) GetOrCreate(key string) *usecase.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.cache[key]; ok {
		return t
	}
	if t, err := s.load(key); err == nil {
		s.cache[key] = t
		return t
	}
	t := usecase.NewThread(key)
	s.cache[key] = t
	return t
}

// Get returns an existing thread or ErrThreadNotFound.
func (s *SQLiteThreadStore) Get(key string) (*usecase.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.cache[key]; ok {
		return t, nil
	}
	t, err := s.load(key)
	if err != nil {
		return nil, domain.NewDomainError("SQLiteThreadStore.Get", domain.ErrThreadNotFound, key)
	}
	s.cache[key] = t
	return t, nil
}

func (s *SQLiteThreadStore) load(key string) (*usecase.Thread, error) {
	row := s.db.QueryRow(
		"SELECT id, messages, created_at, updated_at FROM threads WHERE key = ?", key,
	)

	var id, msgsJSON, createdAt, updatedAt string
	if err := row.Scan(&id, &msgsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var msgs []domain.Message
	if err := json.Unmarshal([]byte(msgsJSON), &msgs); err != nil {
		return nil, fmt.Errorf("decode messages for thread %s: %w", key, err)
	}

	t := usecase.NewThread(key)
	t.ID = id
	t.Msgs = msgs
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		t.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		t.UpdatedAt = ts
	}
	return t, nil
}

// Save writes the thread's current history to disk. Ephemeral threads
// (empty key) are never persisted.
func (s *SQLiteThreadStore) Save(key string) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	t, ok := s.cache[key]
	s.mu.Unlock()
	if !ok {
		return domain.NewDomainError("SQLiteThreadStore.Save", domain.ErrThreadNotFound, key)
	}

	msgsJSON, err := json.Marshal(t.Messages())
	if err != nil {
		return fmt.Errorf("encode messages for thread %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO threads (key, id, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			messages = excluded.messages,
			updated_at = excluded.updated_at
	`,
		key, t.ID, string(msgsJSON),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		t.LastUpdated().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save thread %s: %w", key, err)
	}
	return nil
}

// Delete removes a thread from memory and disk.
func (s *SQLiteThreadStore) Delete(key string) error {
	s.mu.Lock()
	_, cached := s.cache[key]
	delete(s.cache, key)
	s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM threads WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("delete thread %s: %w", key, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 && !cached {
		return domain.NewDomainError("SQLiteThreadStore.Delete", domain.ErrThreadNotFound, key)
	}
	return nil
}

// List returns all known thread keys, persisted and live.
func (s *SQLiteThreadStore) List() []string {
	seen := make(map[string]bool)

	rows, err := s.db.Query("SELECT key FROM threads")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var key string
			if rows.Scan(&key) == nil {
				seen[key] = true
			}
		}
	}

	s.mu.Lock()
	for key := range s.cache {
		seen[key] = true
	}
	s.mu.Unlock()

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	return keys
}

// ReapStale deletes threads not updated within maxAge from both memory
// and disk, returning the number of distinct threads removed.
func (s *SQLiteThreadStore) ReapStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	stale := make(map[string]bool)

	// RFC3339Nano strings in UTC sort chronologically.
	rows, err := s.db.Query(
		"SELECT key FROM threads WHERE updated_at < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err == nil {
		for rows.Next() {
			var key string
			if rows.Scan(&key) == nil {
				stale[key] = true
			}
		}
		rows.Close()
	}

	// The live copy is authoritative: a thread touched since the last
	// Save is not stale even if its persisted row is.
	s.mu.Lock()
	for key, t := range s.cache {
		if t.LastUpdated().Before(cutoff) {
			stale[key] = true
			delete(s.cache, key)
		} else {
			delete(stale, key)
		}
	}
	s.mu.Unlock()

	for key := range stale {
		s.db.Exec("DELETE FROM threads WHERE key = ?", key)
	}
	return len(stale)
}
