package kiosk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jmorrell/narthex/internal/domain/checkin"
)

// Entry is one durable queued check-in awaiting replay. It lives until the
// server confirms a terminal outcome for its idempotency key.
type Entry struct {
	ID             int64               `json:"id"`
	IdempotencyKey string              `json:"idempotency_key"`
	Item           checkin.RequestItem `json:"item"`
	Attempts       int                 `json:"attempts"`
	LastError      string              `json:"last_error,omitempty"`
	EnqueuedAt     time.Time           `json:"enqueued_at"`
}

// Store is the kiosk-local durable queue, backed by its own SQLite file so
// queued check-ins survive a kiosk restart.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the queue database at path. ":memory:" is
// accepted for tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS offline_queue (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			idempotency_key TEXT NOT NULL UNIQUE,
			item TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			enqueued_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate queue: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Enqueue appends an item. The idempotency key must already be set; replays
// of the same key are ignored.
func (s *Store) Enqueue(ctx context.Context, item checkin.RequestItem) error {
	if item.IdempotencyKey == "" {
		return fmt.Errorf("enqueue requires an idempotency key")
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO offline_queue (idempotency_key, item, enqueued_at)
		VALUES (?, ?, ?)
	`, item.IdempotencyKey, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to enqueue: %w", err)
	}
	return nil
}

// Pending returns queued entries in original submission order.
func (s *Store) Pending(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, idempotency_key, item, attempts, last_error, enqueued_at
		FROM offline_queue
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.ID, &e.IdempotencyKey, &payload, &e.Attempts, &e.LastError, &e.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Item); err != nil {
			return nil, fmt.Errorf("failed to decode queue entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Len returns the number of queued entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

// Resolve removes an entry after the server confirmed a terminal outcome for
// its idempotency key.
func (s *Store) Resolve(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM offline_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve queue entry: %w", err)
	}
	return nil
}

// RecordFailure bumps the attempt count and stores the last error, keeping
// the entry queued.
func (s *Store) RecordFailure(ctx context.Context, id int64, cause string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE offline_queue SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		cause, id)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}
