package supervisor

import (
	"context"
	"time"

	"github.com/jmorrell/narthex/internal/domain/audit"
	"github.com/jmorrell/narthex/internal/domain/checkin"
)

// Repository provides supervisor and session persistence.
type Repository interface {
	GetByPINHash(ctx context.Context, pinHash string) (*Supervisor, error)
	Get(ctx context.Context, id string) (*Supervisor, error)
	CreateSession(ctx context.Context, sess *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
}

// OverrideStore applies override mutations atomically with their audit entry.
// If the audit write fails the whole operation rolls back, so a capacity
// bypass can never be committed untracked.
type OverrideStore interface {
	ForceAdmit(ctx context.Context, rec *checkin.Attendance, entry *audit.Entry) error
	ForceCheckout(ctx context.Context, attendanceID string, at time.Time, entry *audit.Entry) error
	LogReprint(ctx context.Context, entry *audit.Entry) error
}

// PersonReader resolves people for override requests.
type PersonReader interface {
	Get(ctx context.Context, id string) (*checkin.Person, error)
}

// AttendanceReader resolves attendance for checkout and reprint.
type AttendanceReader interface {
	Get(ctx context.Context, id string) (*checkin.Attendance, error)
}
