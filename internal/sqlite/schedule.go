package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/repository"
)

// ScheduleRepository implements repository.ScheduleRepository for SQLite
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a schedule
func (r *ScheduleRepository) Create(ctx context.Context, sched *schedule.Schedule) error {
	var weeklyDay sql.NullInt64
	if sched.Weekly != nil {
		weeklyDay = sql.NullInt64{Int64: int64(sched.Weekly.DayOfWeek), Valid: true}
	}
	var freq sql.NullString
	var interval sql.NullInt64
	var start, until sql.NullTime
	if sched.Recurrence != nil {
		freq = sql.NullString{String: string(sched.Recurrence.Frequency), Valid: true}
		interval = sql.NullInt64{Int64: int64(sched.Recurrence.Interval), Valid: true}
		start = sql.NullTime{Time: sched.Recurrence.StartDate, Valid: true}
		if sched.Recurrence.Until != nil {
			until = sql.NullTime{Time: *sched.Recurrence.Until, Valid: true}
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (
			id, name, weekly_day_of_week, recur_frequency, recur_interval,
			recur_start_date, recur_until, time_of_day_minutes,
			checkin_start_offset_min, checkin_end_offset_min,
			effective_end_date, auto_inactivate, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sched.ID,
		sched.Name,
		weeklyDay,
		freq,
		interval,
		start,
		until,
		sched.TimeOfDayMinutes,
		sched.CheckinStartOffsetMin,
		sched.CheckinEndOffsetMin,
		sched.EffectiveEndDate,
		sched.AutoInactivateWhenComplete,
		sched.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// AttachToLocation links a schedule to a location
func (r *ScheduleRepository) AttachToLocation(ctx context.Context, scheduleID, locationID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO location_schedules (location_id, schedule_id) VALUES (?, ?)`,
		locationID, scheduleID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to attach schedule: %w", err)
	}
	return nil
}

const scheduleColumns = `
	id, name, weekly_day_of_week, recur_frequency, recur_interval,
	recur_start_date, recur_until, time_of_day_minutes,
	checkin_start_offset_min, checkin_end_offset_min,
	effective_end_date, auto_inactivate, active
`

// Get retrieves a schedule by id
func (r *ScheduleRepository) Get(ctx context.Context, id string) (*schedule.Schedule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sched, nil
}

// ListForLocation returns schedules attached to a location
func (r *ScheduleRepository) ListForLocation(ctx context.Context, locationID string) ([]schedule.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedules s
		JOIN location_schedules ls ON ls.schedule_id = s.id
		WHERE ls.location_id = ?
		ORDER BY s.name
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var scheds []schedule.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		scheds = append(scheds, *sched)
	}
	return scheds, rows.Err()
}

func scanSchedule(row rowScanner) (*schedule.Schedule, error) {
	var sched schedule.Schedule
	var weeklyDay, interval sql.NullInt64
	var freq sql.NullString
	var start, until, effectiveEnd sql.NullTime
	err := row.Scan(
		&sched.ID,
		&sched.Name,
		&weeklyDay,
		&freq,
		&interval,
		&start,
		&until,
		&sched.TimeOfDayMinutes,
		&sched.CheckinStartOffsetMin,
		&sched.CheckinEndOffsetMin,
		&effectiveEnd,
		&sched.AutoInactivateWhenComplete,
		&sched.Active,
	)
	if err != nil {
		return nil, err
	}
	if weeklyDay.Valid {
		sched.Weekly = &schedule.WeeklyPattern{DayOfWeek: time.Weekday(weeklyDay.Int64)}
	}
	if freq.Valid {
		rule := &schedule.RecurrenceRule{
			Frequency: schedule.Frequency(freq.String),
			Interval:  int(interval.Int64),
			StartDate: start.Time,
		}
		if until.Valid {
			t := until.Time
			rule.Until = &t
		}
		sched.Recurrence = rule
	}
	if effectiveEnd.Valid {
		t := effectiveEnd.Time
		sched.EffectiveEndDate = &t
	}
	return &sched, nil
}
