package schedule

import "errors"

var (
	// ErrScheduleNotFound indicates the schedule doesn't exist.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrNoPattern indicates a schedule with neither weekly nor recurrence
	// representation, or with both set at once.
	ErrNoPattern = errors.New("schedule has no authoritative pattern")
	// ErrNoOccurrence indicates the pattern produces no occurrence for the
	// requested date.
	ErrNoOccurrence = errors.New("no occurrence for date")
	// ErrNoOpenSchedule indicates no schedule is currently open for a location.
	ErrNoOpenSchedule = errors.New("no open schedule")
)
