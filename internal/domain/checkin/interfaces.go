package checkin

import (
	"context"
	"time"

	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
)

// CapacityLedger is the slice of the capacity ledger the engine drives.
type CapacityLedger interface {
	Get(ctx context.Context, locationID string) (*location.Location, error)
	TryAdmit(ctx context.Context, locationID string) error
	Release(ctx context.Context, locationID string) error
}

// ScheduleResolver resolves schedules and open windows.
type ScheduleResolver interface {
	Get(ctx context.Context, id string) (*schedule.Schedule, error)
	CurrentOpen(ctx context.Context, locationID string, asOf time.Time) (*schedule.Schedule, error)
}

// AttendanceRepository provides attendance persistence.
type AttendanceRepository interface {
	Create(ctx context.Context, rec *Attendance) error
	Get(ctx context.Context, id string) (*Attendance, error)
	// FindOpen returns the open (no end time) attendance for the exact
	// person+location+schedule+occurrence, or repository.ErrNotFound.
	FindOpen(ctx context.Context, personID, locationID, scheduleID string, occurrence time.Time) (*Attendance, error)
	// End sets the end time if not already set; ended reports whether this
	// call performed the transition.
	End(ctx context.Context, id string, at time.Time) (ended bool, err error)
	CountForPerson(ctx context.Context, personID string) (int, error)
	SetCode(ctx context.Context, id, code string) error
	ActiveCodeExists(ctx context.Context, campusID, code string) (bool, error)
}

// PersonRepository reads person records managed elsewhere.
type PersonRepository interface {
	Get(ctx context.Context, id string) (*Person, error)
}

// IdempotencyRepository stores terminal results keyed by idempotency key.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*Result, error)
	Put(ctx context.Context, key string, res *Result) error
}

// CodeIssuer issues pickup security codes unique among active ones for a
// campus.
type CodeIssuer interface {
	Issue(ctx context.Context, campusID string) (string, error)
}
