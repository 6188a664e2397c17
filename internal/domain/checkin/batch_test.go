package checkin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/repository"
)

func newBatchFixture() (*engineFixture, *checkin.Batch) {
	f := newEngineFixture()
	return f, checkin.NewBatch(f.engine, f.attendance, f.ledger, nil)
}

func TestBatch_CheckIn_ItemsAreIndependent(t *testing.T) {
	f, batch := newBatchFixture()

	// First sibling fits, the second hits the hard threshold.
	f.people.On("Get", mock.Anything, "kid-1").Return(testPerson(), nil)
	second := testPerson()
	second.ID = "kid-2"
	f.people.On("Get", mock.Anything, "kid-2").Return(second, nil)

	room := testRoom()
	room.CurrentCount = 11
	f.ledger.On("Get", mock.Anything, "room-1").Return(room, nil)
	f.schedules.On("CurrentOpen", mock.Anything, "room-1", testNow).Return(testSchedule(), nil)
	f.attendance.On("FindOpen", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotFound)
	f.ledger.On("TryAdmit", mock.Anything, "room-1").Return(nil).Once()
	f.ledger.On("TryAdmit", mock.Anything, "room-1").Return(location.ErrHardCapacity).Once()
	f.attendance.On("CountForPerson", mock.Anything, mock.Anything).Return(1, nil)
	f.attendance.On("Create", mock.Anything, mock.Anything).Return(nil)

	out := batch.CheckIn(context.Background(), []checkin.RequestItem{
		{PersonID: "kid-1", LocationID: "room-1"},
		{PersonID: "kid-2", LocationID: "room-1"},
	})

	require.Len(t, out.Results, 2)
	require.Equal(t, checkin.OutcomeAdmitted, out.Results[0].Outcome)
	require.Equal(t, checkin.OutcomeAtCapacity, out.Results[1].Outcome)
	require.Equal(t, 1, out.SuccessCount)
	require.Equal(t, 1, out.FailureCount)
	require.False(t, out.AllSucceeded)
}

func TestBatch_CheckIn_InfrastructureErrorBecomesResult(t *testing.T) {
	f, batch := newBatchFixture()

	f.people.On("Get", mock.Anything, "kid-1").Return(nil, errors.New("db down"))
	f.people.On("Get", mock.Anything, "kid-2").Return(testPerson(), nil)
	f.ledger.On("Get", mock.Anything, "room-1").Return(testRoom(), nil)
	f.schedules.On("CurrentOpen", mock.Anything, "room-1", testNow).Return(testSchedule(), nil)
	f.attendance.On("FindOpen", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotFound)
	f.ledger.On("TryAdmit", mock.Anything, "room-1").Return(nil)
	f.attendance.On("CountForPerson", mock.Anything, mock.Anything).Return(1, nil)
	f.attendance.On("Create", mock.Anything, mock.Anything).Return(nil)

	out := batch.CheckIn(context.Background(), []checkin.RequestItem{
		{PersonID: "kid-1", LocationID: "room-1"},
		{PersonID: "kid-2", LocationID: "room-1"},
	})

	require.Len(t, out.Results, 2)
	require.Equal(t, checkin.OutcomeInternalError, out.Results[0].Outcome)
	// The failure does not keep the sibling out.
	require.Equal(t, checkin.OutcomeAdmitted, out.Results[1].Outcome)
}

func TestBatch_CheckIn_Empty(t *testing.T) {
	_, batch := newBatchFixture()
	out := batch.CheckIn(context.Background(), nil)
	require.Empty(t, out.Results)
	require.True(t, out.AllSucceeded)
}

func TestBatch_Checkout(t *testing.T) {
	f, batch := newBatchFixture()

	rec := &checkin.Attendance{
		ID: "att-1", PersonID: "kid-1", LocationID: "room-1",
		OccurrenceDate: testNow, StartAt: testNow.Add(-time.Hour),
	}
	f.attendance.On("Get", mock.Anything, "att-1").Return(rec, nil)
	f.attendance.On("End", mock.Anything, "att-1", testNow).Return(true, nil)
	f.ledger.On("Release", mock.Anything, "room-1").Return(nil)

	got, err := batch.Checkout(context.Background(), "att-1")
	require.NoError(t, err)
	require.NotNil(t, got.EndAt)
	f.ledger.AssertCalled(t, "Release", mock.Anything, "room-1")
}

func TestBatch_Checkout_AlreadyEnded(t *testing.T) {
	f, batch := newBatchFixture()

	ended := testNow.Add(-time.Hour)
	rec := &checkin.Attendance{
		ID: "att-1", PersonID: "kid-1", LocationID: "room-1",
		OccurrenceDate: testNow, StartAt: testNow.Add(-2 * time.Hour), EndAt: &ended,
	}
	f.attendance.On("Get", mock.Anything, "att-1").Return(rec, nil)

	got, err := batch.Checkout(context.Background(), "att-1")
	require.NoError(t, err)
	require.Equal(t, ended, *got.EndAt)
	// No second release for an already-ended record.
	f.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	f.attendance.AssertNotCalled(t, "End", mock.Anything, mock.Anything, mock.Anything)
}

func TestBatch_Checkout_NotFound(t *testing.T) {
	f, batch := newBatchFixture()
	f.attendance.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := batch.Checkout(context.Background(), "missing")
	require.ErrorIs(t, err, checkin.ErrAttendanceNotFound)
}

func TestBatch_Checkout_LostEndRace(t *testing.T) {
	f, batch := newBatchFixture()

	rec := &checkin.Attendance{
		ID: "att-1", PersonID: "kid-1", LocationID: "room-1",
		OccurrenceDate: testNow, StartAt: testNow.Add(-time.Hour),
	}
	f.attendance.On("Get", mock.Anything, "att-1").Return(rec, nil)
	// Another worker ended the record between Get and End.
	f.attendance.On("End", mock.Anything, "att-1", testNow).Return(false, nil)

	_, err := batch.Checkout(context.Background(), "att-1")
	require.NoError(t, err)
	// The seat was already released by whoever won the race.
	f.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}
