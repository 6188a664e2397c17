package repository

import (
	"context"
	"time"

	"github.com/jmorrell/narthex/internal/domain/audit"
	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
)

// LocationRepository manages location persistence. TryAdmit, ForceAdmit and
// Release are the only mutation points for current_count and must be atomic
// per location.
type LocationRepository interface {
	Create(ctx context.Context, loc *location.Location) error
	Get(ctx context.Context, id string) (*location.Location, error)
	ListByCampus(ctx context.Context, campusID string) ([]location.Location, error)
	TryAdmit(ctx context.Context, id string) error
	ForceAdmit(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
}

// PersonRepository reads people managed by the external CRUD surface.
type PersonRepository interface {
	Create(ctx context.Context, p *checkin.Person) error
	Get(ctx context.Context, id string) (*checkin.Person, error)
	Search(ctx context.Context, campusID, query string, limit int) ([]checkin.Person, error)
}

// ScheduleRepository manages schedule persistence.
type ScheduleRepository interface {
	Create(ctx context.Context, sched *schedule.Schedule) error
	Get(ctx context.Context, id string) (*schedule.Schedule, error)
	ListForLocation(ctx context.Context, locationID string) ([]schedule.Schedule, error)
	AttachToLocation(ctx context.Context, scheduleID, locationID string) error
}

// AttendanceRepository manages attendance persistence.
type AttendanceRepository interface {
	Create(ctx context.Context, rec *checkin.Attendance) error
	Get(ctx context.Context, id string) (*checkin.Attendance, error)
	FindOpen(ctx context.Context, personID, locationID, scheduleID string, occurrence time.Time) (*checkin.Attendance, error)
	End(ctx context.Context, id string, at time.Time) (bool, error)
	CountForPerson(ctx context.Context, personID string) (int, error)
	SetCode(ctx context.Context, id, code string) error
	ActiveCodeExists(ctx context.Context, campusID, code string) (bool, error)
}

// IdempotencyRepository stores terminal check-in results by key.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*checkin.Result, error)
	Put(ctx context.Context, key string, res *checkin.Result) error
}

// SupervisorRepository manages supervisors and their sessions.
type SupervisorRepository interface {
	CreateSupervisor(ctx context.Context, sup *supervisor.Supervisor) error
	GetByPINHash(ctx context.Context, pinHash string) (*supervisor.Supervisor, error)
	Get(ctx context.Context, id string) (*supervisor.Supervisor, error)
	CreateSession(ctx context.Context, sess *supervisor.Session) error
	GetSession(ctx context.Context, id string) (*supervisor.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
}

// AuditRepository manages the append-only audit trail.
type AuditRepository interface {
	Log(ctx context.Context, entry *audit.Entry) error
	List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error)
}

// OverrideStore applies supervisor overrides atomically with their audit
// entries.
type OverrideStore interface {
	ForceAdmit(ctx context.Context, rec *checkin.Attendance, entry *audit.Entry) error
	ForceCheckout(ctx context.Context, attendanceID string, at time.Time, entry *audit.Entry) error
	LogReprint(ctx context.Context, entry *audit.Entry) error
}
