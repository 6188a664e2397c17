package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/repository"
)

// AttendanceRepository implements repository.AttendanceRepository for SQLite
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `
	id, person_id, location_id, schedule_id, occurrence_date, start_at,
	end_at, security_code, first_time, device_id, note
`

// Create inserts an attendance record
func (r *AttendanceRepository) Create(ctx context.Context, rec *checkin.Attendance) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.PersonID,
		rec.LocationID,
		rec.ScheduleID,
		rec.OccurrenceDate,
		rec.StartAt,
		rec.EndAt,
		rec.SecurityCode,
		rec.FirstTime,
		rec.DeviceID,
		rec.Note,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

// Get retrieves an attendance record by id
func (r *AttendanceRepository) Get(ctx context.Context, id string) (*checkin.Attendance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id)
	rec, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return rec, nil
}

// FindOpen returns the open attendance for the exact person, location,
// schedule and occurrence
func (r *AttendanceRepository) FindOpen(ctx context.Context, personID, locationID, scheduleID string, occurrence time.Time) (*checkin.Attendance, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE person_id = ? AND location_id = ? AND schedule_id = ?
		  AND occurrence_date = ? AND end_at IS NULL
		LIMIT 1
	`, personID, locationID, scheduleID, occurrence)
	rec, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open attendance: %w", err)
	}
	return rec, nil
}

// End sets the end time if the record is still open; ended reports whether
// this call made the transition
func (r *AttendanceRepository) End(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendance SET end_at = ? WHERE id = ? AND end_at IS NULL`, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to end attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// CountForPerson counts all attendance ever recorded for the person
func (r *AttendanceRepository) CountForPerson(ctx context.Context, personID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE person_id = ?`, personID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}

// SetCode stores a security code on an attendance record
func (r *AttendanceRepository) SetCode(ctx context.Context, id, code string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendance SET security_code = ? WHERE id = ?`, code, id)
	if err != nil {
		return fmt.Errorf("failed to set code: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ActiveCodeExists reports whether an open attendance for the campus already
// holds the code. Codes recycle once their attendance is checked out.
func (r *AttendanceRepository) ActiveCodeExists(ctx context.Context, campusID, code string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM attendance a
		JOIN people p ON p.id = a.person_id
		WHERE p.campus_id = ? AND a.security_code = ? AND a.end_at IS NULL
	`, campusID, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return count > 0, nil
}

func scanAttendance(row rowScanner) (*checkin.Attendance, error) {
	var rec checkin.Attendance
	var endAt sql.NullTime
	var code sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.PersonID,
		&rec.LocationID,
		&rec.ScheduleID,
		&rec.OccurrenceDate,
		&rec.StartAt,
		&endAt,
		&code,
		&rec.FirstTime,
		&rec.DeviceID,
		&rec.Note,
	)
	if err != nil {
		return nil, err
	}
	if endAt.Valid {
		t := endAt.Time
		rec.EndAt = &t
	}
	if code.Valid {
		rec.SecurityCode = &code.String
	}
	return &rec, nil
}
