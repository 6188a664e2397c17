// Package testserver stands up the full check-in service over an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
	"github.com/jmorrell/narthex/internal/sqlite"
	"github.com/jmorrell/narthex/internal/transport"
)

// TestServer bundles a running HTTP server with direct repository access so
// tests can seed data and inspect state underneath the API.
type TestServer struct {
	Server      *httptest.Server
	DB          *sqlite.DB
	Locations   *sqlite.LocationRepository
	People      *sqlite.PersonRepository
	Schedules   *sqlite.ScheduleRepository
	Supervisors *sqlite.SupervisorRepository
}

// New builds the full service wiring over a fresh in-memory database and
// serves it from an httptest server. Cleanup is registered on t.
func New(t *testing.T, campusID string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	locationRepo := sqlite.NewLocationRepository(db)
	personRepo := sqlite.NewPersonRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	idempotencyRepo := sqlite.NewIdempotencyRepository(db)
	supervisorRepo := sqlite.NewSupervisorRepository(db)
	overrideStore := sqlite.NewOverrideStore(db)

	ledger := location.NewLedger(locationRepo, nil)
	scheduleSvc := schedule.NewService(scheduleRepo, nil)
	codes := checkin.NewCodeGenerator(attendanceRepo, 4)
	engine := checkin.NewEngine(ledger, scheduleSvc, attendanceRepo, personRepo, idempotencyRepo, codes, nil)
	batch := checkin.NewBatch(engine, attendanceRepo, ledger, nil)
	supervisorSvc := supervisor.NewService(
		supervisorRepo, overrideStore, personRepo, attendanceRepo, ledger, codes,
		supervisor.TokenConfig{Issuer: "narthex", SigningKey: "test-key", SessionTTL: 30 * time.Minute},
		nil,
	)

	router := transport.NewRouter(transport.Config{
		Engine:      engine,
		Batch:       batch,
		Ledger:      ledger,
		Schedules:   scheduleSvc,
		Supervisors: supervisorSvc,
		People:      personRepo,
		CampusID:    campusID,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:      server,
		DB:          db,
		Locations:   locationRepo,
		People:      personRepo,
		Schedules:   scheduleRepo,
		Supervisors: supervisorRepo,
	}
}

// SeedPerson inserts an active person on the given campus.
func (ts *TestServer) SeedPerson(t *testing.T, id, campusID, first, last string) {
	t.Helper()
	require.NoError(t, ts.People.Create(context.Background(), &checkin.Person{
		ID: id, CampusID: campusID, FirstName: first, LastName: last, Active: true,
	}))
}

// SeedLocation inserts an active location with an optional hard threshold.
func (ts *TestServer) SeedLocation(t *testing.T, id, campusID, name string, hardThreshold *int) {
	t.Helper()
	require.NoError(t, ts.Locations.Create(context.Background(), &location.Location{
		ID: id, CampusID: campusID, Name: name, HardThreshold: hardThreshold, Active: true,
	}))
}

// SeedOpenSchedule attaches a weekly schedule to the location whose check-in
// window spans the wall clock.
func (ts *TestServer) SeedOpenSchedule(t *testing.T, id, locationID string) {
	t.Helper()
	now := time.Now()
	ctx := context.Background()
	require.NoError(t, ts.Schedules.Create(ctx, &schedule.Schedule{
		ID:                    id,
		Name:                  "Service",
		Weekly:                &schedule.WeeklyPattern{DayOfWeek: now.Weekday()},
		TimeOfDayMinutes:      now.Hour()*60 + now.Minute(),
		CheckinStartOffsetMin: -120,
		CheckinEndOffsetMin:   120,
		Active:                true,
	}))
	require.NoError(t, ts.Schedules.AttachToLocation(ctx, id, locationID))
}

// SeedSupervisor inserts an active supervisor with the given PIN.
func (ts *TestServer) SeedSupervisor(t *testing.T, id, name, pin string) {
	t.Helper()
	require.NoError(t, ts.Supervisors.CreateSupervisor(context.Background(), &supervisor.Supervisor{
		ID: id, Name: name, PINHash: supervisor.HashPIN(pin), Active: true,
	}))
}
