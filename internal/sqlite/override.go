package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmorrell/narthex/internal/domain/audit"
	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/repository"
)

// OverrideStore implements repository.OverrideStore for SQLite.
//
// Each override commits its mutation and its audit entry in one transaction:
// if the audit insert fails, the whole override rolls back, so a capacity
// bypass can never land untracked.
type OverrideStore struct {
	db *DB
}

// NewOverrideStore creates a new OverrideStore
func NewOverrideStore(db *DB) *OverrideStore {
	return &OverrideStore{db: db}
}

// ForceAdmit increments the location count past its hard threshold, inserts
// the attendance record, and logs the audit entry atomically
func (s *OverrideStore) ForceAdmit(ctx context.Context, rec *checkin.Attendance, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin override: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE locations SET current_count = current_count + 1 WHERE id = ?`, rec.LocationID)
	if err != nil {
		return fmt.Errorf("failed to take seat: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance (
			id, person_id, location_id, schedule_id, occurrence_date,
			start_at, end_at, security_code, first_time, device_id, note
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.PersonID, rec.LocationID, rec.ScheduleID, rec.OccurrenceDate,
		rec.StartAt, rec.EndAt, rec.SecurityCode, rec.FirstTime, rec.DeviceID, rec.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to create attendance: %w", err)
	}

	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// ForceCheckout ends the attendance, releases its seat, and logs the audit
// entry atomically. Already-ended records are left untouched.
func (s *OverrideStore) ForceCheckout(ctx context.Context, attendanceID string, at time.Time, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin override: %w", err)
	}
	defer tx.Rollback()

	var locationID string
	err = tx.QueryRowContext(ctx,
		`SELECT location_id FROM attendance WHERE id = ? AND end_at IS NULL`, attendanceID).
		Scan(&locationID)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load attendance: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE attendance SET end_at = ? WHERE id = ? AND end_at IS NULL`, at, attendanceID); err != nil {
		return fmt.Errorf("failed to end attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE locations
		SET current_count = CASE WHEN current_count > 0 THEN current_count - 1 ELSE 0 END
		WHERE id = ?
	`, locationID); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}

	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// LogReprint records the audit entry for a code reprint
func (s *OverrideStore) LogReprint(ctx context.Context, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin override: %w", err)
	}
	defer tx.Rollback()

	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAudit(ctx context.Context, tx *sql.Tx, entry *audit.Entry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, session_id, action, target_type, target_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.ActorID, entry.SessionID, entry.Action,
		entry.TargetType, entry.TargetID, entry.Reason, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}
