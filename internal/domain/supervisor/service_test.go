package supervisor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmorrell/narthex/internal/domain/audit"
	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
	"github.com/jmorrell/narthex/internal/repository"
	"github.com/jmorrell/narthex/internal/repository/mocks"
)

// Token validation inside the jwt library uses the wall clock, so the
// fixture clock has to stay near real time.
var testNow = time.Now().UTC().Truncate(time.Second)

type serviceFixture struct {
	supervisors *mocks.SupervisorRepository
	store       *mocks.OverrideStore
	people      *mocks.PersonRepository
	attendance  *mocks.AttendanceRepository
	ledger      *mocks.CapacityLedger
	codes       *mocks.CodeIssuer
	svc         *supervisor.Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		supervisors: new(mocks.SupervisorRepository),
		store:       new(mocks.OverrideStore),
		people:      new(mocks.PersonRepository),
		attendance:  new(mocks.AttendanceRepository),
		ledger:      new(mocks.CapacityLedger),
		codes:       new(mocks.CodeIssuer),
	}
	f.svc = supervisor.NewService(
		f.supervisors, f.store, f.people, f.attendance, f.ledger, f.codes,
		supervisor.TokenConfig{Issuer: "narthex", SigningKey: "test-key", SessionTTL: 30 * time.Minute},
		nil,
	).WithClock(func() time.Time { return testNow })
	return f
}

func activeSupervisor() *supervisor.Supervisor {
	return &supervisor.Supervisor{
		ID: "sup-1", Name: "Dana", PINHash: supervisor.HashPIN("4321"), Active: true,
	}
}

func testSession() *supervisor.Session {
	return &supervisor.Session{
		ID:           "sess-1",
		SupervisorID: "sup-1",
		IssuedAt:     testNow,
		ExpiresAt:    testNow.Add(30 * time.Minute),
	}
}

func TestService_Login(t *testing.T) {
	f := newServiceFixture()

	f.supervisors.On("GetByPINHash", mock.Anything, supervisor.HashPIN("4321")).
		Return(activeSupervisor(), nil)
	f.supervisors.On("CreateSession", mock.Anything, mock.AnythingOfType("*supervisor.Session")).
		Return(nil)

	res, err := f.svc.Login(context.Background(), "4321")
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionToken)
	require.Equal(t, testNow.Add(30*time.Minute), res.ExpiresAt)
	require.Equal(t, "Dana", res.Supervisor.Name)

	claims, err := supervisor.ParseToken(res.SessionToken, "test-key", "narthex")
	require.NoError(t, err)
	require.Equal(t, "sup-1", claims.SupervisorID)
	require.NotEmpty(t, claims.ID)
}

func TestService_Login_BadPIN(t *testing.T) {
	f := newServiceFixture()
	f.supervisors.On("GetByPINHash", mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotFound)

	_, err := f.svc.Login(context.Background(), "9999")
	require.ErrorIs(t, err, supervisor.ErrBadPIN)

	_, err = f.svc.Login(context.Background(), "")
	require.ErrorIs(t, err, supervisor.ErrBadPIN)
}

func TestService_Login_InactiveSupervisor(t *testing.T) {
	f := newServiceFixture()
	sup := activeSupervisor()
	sup.Active = false
	f.supervisors.On("GetByPINHash", mock.Anything, mock.Anything).Return(sup, nil)

	_, err := f.svc.Login(context.Background(), "4321")
	require.ErrorIs(t, err, supervisor.ErrBadPIN)
	f.supervisors.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func loginToken(t *testing.T, f *serviceFixture) (string, *supervisor.Session) {
	t.Helper()
	var created *supervisor.Session
	f.supervisors.On("GetByPINHash", mock.Anything, supervisor.HashPIN("4321")).
		Return(activeSupervisor(), nil)
	f.supervisors.On("CreateSession", mock.Anything, mock.AnythingOfType("*supervisor.Session")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*supervisor.Session)
		}).
		Return(nil)
	res, err := f.svc.Login(context.Background(), "4321")
	require.NoError(t, err)
	return res.SessionToken, created
}

func TestService_Authenticate(t *testing.T) {
	f := newServiceFixture()
	token, sess := loginToken(t, f)

	f.supervisors.On("GetSession", mock.Anything, sess.ID).Return(sess, nil)

	got, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "sup-1", got.SupervisorID)
}

func TestService_Authenticate_RevokedSession(t *testing.T) {
	f := newServiceFixture()
	token, sess := loginToken(t, f)

	revoked := testNow.Add(time.Minute)
	sess.RevokedAt = &revoked
	f.supervisors.On("GetSession", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, supervisor.ErrSessionExpired)
}

func TestService_Authenticate_ExpiredSession(t *testing.T) {
	f := newServiceFixture()
	token, sess := loginToken(t, f)

	// The stored row expired even though the token still parses.
	sess.ExpiresAt = testNow.Add(-time.Minute)
	f.supervisors.On("GetSession", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, supervisor.ErrSessionExpired)
}

func TestService_Authenticate_GarbageToken(t *testing.T) {
	f := newServiceFixture()
	_, err := f.svc.Authenticate(context.Background(), "not-a-token")
	require.ErrorIs(t, err, supervisor.ErrInvalidToken)
}

func TestService_Authenticate_WrongKey(t *testing.T) {
	f := newServiceFixture()
	sess := testSession()
	token, err := supervisor.IssueToken(sess, "narthex", "other-key")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, supervisor.ErrInvalidToken)
}

func TestService_Logout(t *testing.T) {
	f := newServiceFixture()
	token, sess := loginToken(t, f)

	f.supervisors.On("RevokeSession", mock.Anything, sess.ID, testNow).Return(nil)
	require.NoError(t, f.svc.Logout(context.Background(), token))

	// Logging out an unknown session is a no-op.
	f2 := newServiceFixture()
	token2, sess2 := loginToken(t, f2)
	f2.supervisors.On("RevokeSession", mock.Anything, sess2.ID, testNow).
		Return(repository.ErrNotFound)
	require.NoError(t, f2.svc.Logout(context.Background(), token2))
}

func TestService_ForceAdmit(t *testing.T) {
	f := newServiceFixture()

	f.people.On("Get", mock.Anything, "kid-1").Return(&checkin.Person{
		ID: "kid-1", CampusID: "main", FirstName: "Avery", LastName: "Jones", Active: true,
	}, nil)
	f.ledger.On("Get", mock.Anything, "room-1").Return(&location.Location{
		ID: "room-1", CampusID: "main", Name: "Toddlers A", Active: true,
	}, nil)
	f.codes.On("Issue", mock.Anything, "main").Return("XY42", nil)
	f.store.On("ForceAdmit", mock.Anything,
		mock.AnythingOfType("*checkin.Attendance"),
		mock.MatchedBy(func(entry *audit.Entry) bool {
			return entry.Action == audit.ActionForceAdmit &&
				entry.ActorID == "sup-1" && entry.SessionID == "sess-1"
		})).Return(nil)

	res, err := f.svc.ForceAdmit(context.Background(), testSession(), supervisor.ForceAdmitRequest{
		PersonID:             "kid-1",
		LocationID:           "room-1",
		GenerateSecurityCode: true,
		Reason:               "sibling placement",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, checkin.OutcomeAdmitted, res.Outcome)
	require.Equal(t, "XY42", res.SecurityCode)
	f.store.AssertExpectations(t)
}

func TestService_ForceAdmit_FailedAuditFailsOverride(t *testing.T) {
	f := newServiceFixture()

	f.people.On("Get", mock.Anything, "kid-1").Return(&checkin.Person{
		ID: "kid-1", CampusID: "main", Active: true,
	}, nil)
	f.ledger.On("Get", mock.Anything, "room-1").Return(&location.Location{
		ID: "room-1", Name: "Room", Active: true,
	}, nil)
	f.store.On("ForceAdmit", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("audit write failed"))

	_, err := f.svc.ForceAdmit(context.Background(), testSession(), supervisor.ForceAdmitRequest{
		PersonID: "kid-1", LocationID: "room-1",
	})
	require.Error(t, err)
}

func TestService_ForceAdmit_PersonNotFound(t *testing.T) {
	f := newServiceFixture()
	f.people.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	res, err := f.svc.ForceAdmit(context.Background(), testSession(), supervisor.ForceAdmitRequest{
		PersonID: "ghost", LocationID: "room-1",
	})
	require.NoError(t, err)
	require.Equal(t, checkin.OutcomeNotFound, res.Outcome)
	f.store.AssertNotCalled(t, "ForceAdmit", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Checkout(t *testing.T) {
	f := newServiceFixture()

	f.attendance.On("Get", mock.Anything, "att-1").Return(&checkin.Attendance{
		ID: "att-1", PersonID: "kid-1", LocationID: "room-1",
		OccurrenceDate: testNow, StartAt: testNow.Add(-time.Hour),
	}, nil)
	f.store.On("ForceCheckout", mock.Anything, "att-1", testNow,
		mock.MatchedBy(func(entry *audit.Entry) bool {
			return entry.Action == audit.ActionForceCheckout && entry.Reason == "early pickup"
		})).Return(nil)

	require.NoError(t, f.svc.Checkout(context.Background(), testSession(), "att-1", "early pickup"))
	f.store.AssertExpectations(t)
}

func TestService_Checkout_AlreadyEnded(t *testing.T) {
	f := newServiceFixture()

	ended := testNow.Add(-time.Minute)
	f.attendance.On("Get", mock.Anything, "att-1").Return(&checkin.Attendance{
		ID: "att-1", EndAt: &ended,
	}, nil)

	require.NoError(t, f.svc.Checkout(context.Background(), testSession(), "att-1", ""))
	f.store.AssertNotCalled(t, "ForceCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReprintCode(t *testing.T) {
	f := newServiceFixture()

	code := "XY42"
	f.attendance.On("Get", mock.Anything, "att-1").Return(&checkin.Attendance{
		ID: "att-1", SecurityCode: &code,
	}, nil)
	f.store.On("LogReprint", mock.Anything, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionReprintCode && entry.TargetID == "att-1"
	})).Return(nil)

	got, err := f.svc.ReprintCode(context.Background(), testSession(), "att-1")
	require.NoError(t, err)
	require.Equal(t, "XY42", got)
}

func TestService_ReprintCode_NoCode(t *testing.T) {
	f := newServiceFixture()
	f.attendance.On("Get", mock.Anything, "att-1").Return(&checkin.Attendance{ID: "att-1"}, nil)

	_, err := f.svc.ReprintCode(context.Background(), testSession(), "att-1")
	require.ErrorIs(t, err, supervisor.ErrNoSecurityCode)
	f.store.AssertNotCalled(t, "LogReprint", mock.Anything, mock.Anything)
}

func TestService_ReprintCode_FailedAuditFailsReprint(t *testing.T) {
	f := newServiceFixture()

	code := "XY42"
	f.attendance.On("Get", mock.Anything, "att-1").Return(&checkin.Attendance{
		ID: "att-1", SecurityCode: &code,
	}, nil)
	f.store.On("LogReprint", mock.Anything, mock.Anything).Return(errors.New("audit down"))

	_, err := f.svc.ReprintCode(context.Background(), testSession(), "att-1")
	require.Error(t, err)
}
