package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmorrell/narthex/internal/domain/supervisor"
	"github.com/jmorrell/narthex/internal/repository"
)

// SupervisorRepository implements repository.SupervisorRepository for SQLite
type SupervisorRepository struct {
	db *DB
}

// NewSupervisorRepository creates a new SupervisorRepository
func NewSupervisorRepository(db *DB) *SupervisorRepository {
	return &SupervisorRepository{db: db}
}

// CreateSupervisor inserts a supervisor row
func (r *SupervisorRepository) CreateSupervisor(ctx context.Context, sup *supervisor.Supervisor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO supervisors (id, name, pin_hash, active) VALUES (?, ?, ?, ?)`,
		sup.ID, sup.Name, sup.PINHash, sup.Active)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	return nil
}

// GetByPINHash looks a supervisor up by hashed PIN
func (r *SupervisorRepository) GetByPINHash(ctx context.Context, pinHash string) (*supervisor.Supervisor, error) {
	var sup supervisor.Supervisor
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, pin_hash, active FROM supervisors WHERE pin_hash = ?`, pinHash).
		Scan(&sup.ID, &sup.Name, &sup.PINHash, &sup.Active)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supervisor: %w", err)
	}
	return &sup, nil
}

// Get retrieves a supervisor by id
func (r *SupervisorRepository) Get(ctx context.Context, id string) (*supervisor.Supervisor, error) {
	var sup supervisor.Supervisor
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, pin_hash, active FROM supervisors WHERE id = ?`, id).
		Scan(&sup.ID, &sup.Name, &sup.PINHash, &sup.Active)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supervisor: %w", err)
	}
	return &sup, nil
}

// CreateSession inserts a session row
func (r *SupervisorRepository) CreateSession(ctx context.Context, sess *supervisor.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO supervisor_sessions (id, supervisor_id, issued_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.SupervisorID, sess.IssuedAt, sess.ExpiresAt, sess.RevokedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id
func (r *SupervisorRepository) GetSession(ctx context.Context, id string) (*supervisor.Session, error) {
	var sess supervisor.Session
	var revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, supervisor_id, issued_at, expires_at, revoked_at
		FROM supervisor_sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.SupervisorID, &sess.IssuedAt, &sess.ExpiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		sess.RevokedAt = &t
	}
	return &sess, nil
}

// RevokeSession marks a session revoked; revoking twice keeps the first
// timestamp
func (r *SupervisorRepository) RevokeSession(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE supervisor_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already revoked.
		var exists int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM supervisor_sessions WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
	}
	return nil
}
