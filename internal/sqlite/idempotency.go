package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/repository"
)

// IdempotencyRepository implements repository.IdempotencyRepository for SQLite
type IdempotencyRepository struct {
	db *DB
}

// NewIdempotencyRepository creates a new IdempotencyRepository
func NewIdempotencyRepository(db *DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Get returns the stored terminal result for a key
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*checkin.Result, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT result FROM idempotency_keys WHERE key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var res checkin.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &res, nil
}

// Put stores the terminal result for a key. The first writer wins; a
// concurrent duplicate keeps the original result.
func (r *IdempotencyRepository) Put(ctx context.Context, key string, res *checkin.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO idempotency_keys (key, result) VALUES (?, ?)`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
