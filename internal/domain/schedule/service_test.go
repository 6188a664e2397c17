package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/repository"
	"github.com/jmorrell/narthex/internal/repository/mocks"
)

func sundayAt10() schedule.Schedule {
	return schedule.Schedule{
		ID:                    "s1",
		Name:                  "Sunday 10am",
		Weekly:                &schedule.WeeklyPattern{DayOfWeek: time.Sunday},
		TimeOfDayMinutes:      10 * 60,
		CheckinStartOffsetMin: -30,
		CheckinEndOffsetMin:   30,
		Active:                true,
	}
}

func TestService_Get(t *testing.T) {
	repo := new(mocks.ScheduleRepository)
	sched := sundayAt10()
	repo.On("Get", mock.Anything, "s1").Return(&sched, nil)
	repo.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	svc := schedule.NewService(repo, nil)

	got, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "Sunday 10am", got.Name)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, schedule.ErrScheduleNotFound)
}

func TestService_CurrentOpen(t *testing.T) {
	// 2026-03-01 is a Sunday.
	open := sundayAt10()
	closed := sundayAt10()
	closed.ID = "s2"
	closed.TimeOfDayMinutes = 18 * 60

	repo := new(mocks.ScheduleRepository)
	repo.On("ListForLocation", mock.Anything, "room-1").Return([]schedule.Schedule{closed, open}, nil)

	svc := schedule.NewService(repo, nil)

	got, err := svc.CurrentOpen(context.Background(), "room-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "s1", got.ID)

	_, err = svc.CurrentOpen(context.Background(), "room-1", time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, schedule.ErrNoOpenSchedule)
}

func TestService_ListOpenForLocation(t *testing.T) {
	first := sundayAt10()
	second := sundayAt10()
	second.ID = "s2"
	second.CheckinEndOffsetMin = 120

	repo := new(mocks.ScheduleRepository)
	repo.On("ListForLocation", mock.Anything, "room-1").Return([]schedule.Schedule{first, second}, nil)

	svc := schedule.NewService(repo, nil)

	open, err := svc.ListOpenForLocation(context.Background(), "room-1", time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "s2", open[0].ID)
}
