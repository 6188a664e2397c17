package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jmorrell/narthex/internal/domain/audit"
	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
)

// LocationRepository is a mock for repository.LocationRepository.
type LocationRepository struct {
	mock.Mock
}

func (m *LocationRepository) Create(ctx context.Context, loc *location.Location) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *LocationRepository) Get(ctx context.Context, id string) (*location.Location, error) {
	args := m.Called(ctx, id)
	if loc, ok := args.Get(0).(*location.Location); ok {
		return loc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LocationRepository) ListByCampus(ctx context.Context, campusID string) ([]location.Location, error) {
	args := m.Called(ctx, campusID)
	if list, ok := args.Get(0).([]location.Location); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LocationRepository) TryAdmit(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LocationRepository) ForceAdmit(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LocationRepository) Release(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CapacityLedger is a mock for checkin.CapacityLedger.
type CapacityLedger struct {
	mock.Mock
}

func (m *CapacityLedger) Get(ctx context.Context, locationID string) (*location.Location, error) {
	args := m.Called(ctx, locationID)
	if loc, ok := args.Get(0).(*location.Location); ok {
		return loc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CapacityLedger) TryAdmit(ctx context.Context, locationID string) error {
	args := m.Called(ctx, locationID)
	return args.Error(0)
}

func (m *CapacityLedger) Release(ctx context.Context, locationID string) error {
	args := m.Called(ctx, locationID)
	return args.Error(0)
}

// ScheduleResolver is a mock for checkin.ScheduleResolver.
type ScheduleResolver struct {
	mock.Mock
}

func (m *ScheduleResolver) Get(ctx context.Context, id string) (*schedule.Schedule, error) {
	args := m.Called(ctx, id)
	if sched, ok := args.Get(0).(*schedule.Schedule); ok {
		return sched, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ScheduleResolver) CurrentOpen(ctx context.Context, locationID string, asOf time.Time) (*schedule.Schedule, error) {
	args := m.Called(ctx, locationID, asOf)
	if sched, ok := args.Get(0).(*schedule.Schedule); ok {
		return sched, args.Error(1)
	}
	return nil, args.Error(1)
}

// ScheduleRepository is a mock for schedule.Repository.
type ScheduleRepository struct {
	mock.Mock
}

func (m *ScheduleRepository) Get(ctx context.Context, id string) (*schedule.Schedule, error) {
	args := m.Called(ctx, id)
	if sched, ok := args.Get(0).(*schedule.Schedule); ok {
		return sched, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ScheduleRepository) ListForLocation(ctx context.Context, locationID string) ([]schedule.Schedule, error) {
	args := m.Called(ctx, locationID)
	if list, ok := args.Get(0).([]schedule.Schedule); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AttendanceRepository is a mock for repository.AttendanceRepository.
type AttendanceRepository struct {
	mock.Mock
}

func (m *AttendanceRepository) Create(ctx context.Context, rec *checkin.Attendance) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *AttendanceRepository) Get(ctx context.Context, id string) (*checkin.Attendance, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*checkin.Attendance); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttendanceRepository) FindOpen(ctx context.Context, personID, locationID, scheduleID string, occurrence time.Time) (*checkin.Attendance, error) {
	args := m.Called(ctx, personID, locationID, scheduleID, occurrence)
	if rec, ok := args.Get(0).(*checkin.Attendance); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttendanceRepository) End(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *AttendanceRepository) CountForPerson(ctx context.Context, personID string) (int, error) {
	args := m.Called(ctx, personID)
	return args.Int(0), args.Error(1)
}

func (m *AttendanceRepository) SetCode(ctx context.Context, id, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *AttendanceRepository) ActiveCodeExists(ctx context.Context, campusID, code string) (bool, error) {
	args := m.Called(ctx, campusID, code)
	return args.Bool(0), args.Error(1)
}

// PersonRepository is a mock for repository.PersonRepository.
type PersonRepository struct {
	mock.Mock
}

func (m *PersonRepository) Create(ctx context.Context, p *checkin.Person) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PersonRepository) Get(ctx context.Context, id string) (*checkin.Person, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*checkin.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) Search(ctx context.Context, campusID, query string, limit int) ([]checkin.Person, error) {
	args := m.Called(ctx, campusID, query, limit)
	if people, ok := args.Get(0).([]checkin.Person); ok {
		return people, args.Error(1)
	}
	return nil, args.Error(1)
}

// IdempotencyRepository is a mock for repository.IdempotencyRepository.
type IdempotencyRepository struct {
	mock.Mock
}

func (m *IdempotencyRepository) Get(ctx context.Context, key string) (*checkin.Result, error) {
	args := m.Called(ctx, key)
	if res, ok := args.Get(0).(*checkin.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdempotencyRepository) Put(ctx context.Context, key string, res *checkin.Result) error {
	args := m.Called(ctx, key, res)
	return args.Error(0)
}

// CodeIssuer is a mock for checkin.CodeIssuer.
type CodeIssuer struct {
	mock.Mock
}

func (m *CodeIssuer) Issue(ctx context.Context, campusID string) (string, error) {
	args := m.Called(ctx, campusID)
	return args.String(0), args.Error(1)
}

// SupervisorRepository is a mock for supervisor.Repository.
type SupervisorRepository struct {
	mock.Mock
}

func (m *SupervisorRepository) GetByPINHash(ctx context.Context, pinHash string) (*supervisor.Supervisor, error) {
	args := m.Called(ctx, pinHash)
	if sup, ok := args.Get(0).(*supervisor.Supervisor); ok {
		return sup, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SupervisorRepository) Get(ctx context.Context, id string) (*supervisor.Supervisor, error) {
	args := m.Called(ctx, id)
	if sup, ok := args.Get(0).(*supervisor.Supervisor); ok {
		return sup, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SupervisorRepository) CreateSession(ctx context.Context, sess *supervisor.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SupervisorRepository) GetSession(ctx context.Context, id string) (*supervisor.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*supervisor.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SupervisorRepository) RevokeSession(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// OverrideStore is a mock for repository.OverrideStore.
type OverrideStore struct {
	mock.Mock
}

func (m *OverrideStore) ForceAdmit(ctx context.Context, rec *checkin.Attendance, entry *audit.Entry) error {
	args := m.Called(ctx, rec, entry)
	return args.Error(0)
}

func (m *OverrideStore) ForceCheckout(ctx context.Context, attendanceID string, at time.Time, entry *audit.Entry) error {
	args := m.Called(ctx, attendanceID, at, entry)
	return args.Error(0)
}

func (m *OverrideStore) LogReprint(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// AuditRepository is a mock for repository.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Log(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
