package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

// Sunday service at 10:00 with a window from 09:30 to 10:30.
func sundayService() *Schedule {
	return &Schedule{
		ID:                    "s1",
		Name:                  "Sunday 10am",
		Weekly:                &WeeklyPattern{DayOfWeek: time.Sunday},
		TimeOfDayMinutes:      10 * 60,
		CheckinStartOffsetMin: -30,
		CheckinEndOffsetMin:   30,
		Active:                true,
	}
}

func TestDateOf(t *testing.T) {
	at := time.Date(2026, 3, 1, 14, 35, 12, 99, time.UTC)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), DateOf(at))
}

func TestComputeWindow_Weekly(t *testing.T) {
	// 2026-03-01 is a Sunday.
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	win, err := ComputeWindow(sundayService(), sunday)
	require.NoError(t, err)
	require.Equal(t, sunday.Add(9*time.Hour+30*time.Minute), win.Start)
	require.Equal(t, sunday.Add(10*time.Hour+30*time.Minute), win.End)

	// A Wednesday anchors back to the previous Sunday.
	wednesday := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	win, err = ComputeWindow(sundayService(), wednesday)
	require.NoError(t, err)
	require.Equal(t, sunday.Add(9*time.Hour+30*time.Minute), win.Start)
}

func TestIsOpen_WindowBoundaries(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sched := sundayService()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"just before start", sunday.Add(9*time.Hour + 29*time.Minute), false},
		{"exactly at start", sunday.Add(9*time.Hour + 30*time.Minute), true},
		{"at service time", sunday.Add(10 * time.Hour), true},
		{"exactly at end", sunday.Add(10*time.Hour + 30*time.Minute), true},
		{"just after end", sunday.Add(10*time.Hour + 31*time.Minute), false},
		{"wrong day", sunday.AddDate(0, 0, 3).Add(10 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsOpen(sched, tt.at))
		})
	}
}

func TestIsOpen_Inactive(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sched := sundayService()
	sched.Active = false
	require.False(t, IsOpen(sched, sunday))
}

func TestIsOpen_AutoInactivateAfterEffectiveEnd(t *testing.T) {
	sched := sundayService()
	sched.AutoInactivateWhenComplete = true
	sched.EffectiveEndDate = timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	// Open during the final occurrence day.
	require.True(t, IsOpen(sched, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	// Closed for good once the end date has passed, even on a matching Sunday.
	require.False(t, IsOpen(sched, time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)))
}

func TestIsOpen_EffectiveEndWithoutAutoInactivate(t *testing.T) {
	sched := sundayService()
	sched.EffectiveEndDate = timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	// Without the auto-inactivate flag the end date is informational only.
	require.True(t, IsOpen(sched, time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)))
}

func TestComputeWindow_NoPattern(t *testing.T) {
	sched := &Schedule{ID: "s1", Active: true}
	_, err := ComputeWindow(sched, time.Now())
	require.ErrorIs(t, err, ErrNoPattern)

	sched.Weekly = &WeeklyPattern{DayOfWeek: time.Sunday}
	sched.Recurrence = &RecurrenceRule{Frequency: FreqWeekly, Interval: 1, StartDate: time.Now()}
	_, err = ComputeWindow(sched, time.Now())
	require.ErrorIs(t, err, ErrNoPattern)
}

func TestOccurrence_RecurrenceDaily(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sched := &Schedule{
		ID: "s1",
		Recurrence: &RecurrenceRule{
			Frequency: FreqDaily,
			Interval:  3,
			StartDate: start,
		},
		TimeOfDayMinutes:    18 * 60,
		CheckinEndOffsetMin: 60,
		Active:              true,
	}

	// March 4 falls between occurrences; the anchor rolls to March 5.
	anchor, win, err := Occurrence(sched, time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, start.AddDate(0, 0, 3), anchor)
	require.Equal(t, anchor.Add(18*time.Hour), win.Start)
	require.Equal(t, anchor.Add(19*time.Hour), win.End)

	// An occurrence day anchors to itself.
	anchor, _, err = Occurrence(sched, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, start.AddDate(0, 0, 3), anchor)
}

func TestOccurrence_RecurrenceWeeklyInterval(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // a Monday
	sched := &Schedule{
		ID: "s1",
		Recurrence: &RecurrenceRule{
			Frequency: FreqWeekly,
			Interval:  2,
			StartDate: start,
		},
		Active: true,
	}

	anchor, _, err := Occurrence(sched, start.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Equal(t, start.AddDate(0, 0, 14), anchor)

	// The off week rolls forward to the next occurrence.
	anchor, _, err = Occurrence(sched, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Equal(t, start.AddDate(0, 0, 14), anchor)
}

func TestOccurrence_RecurrenceUntil(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 7)
	sched := &Schedule{
		ID: "s1",
		Recurrence: &RecurrenceRule{
			Frequency: FreqWeekly,
			Interval:  1,
			StartDate: start,
			Until:     &until,
		},
		Active: true,
	}

	_, _, err := Occurrence(sched, start.AddDate(0, 0, 8))
	require.ErrorIs(t, err, ErrNoOccurrence)
	require.False(t, IsOpen(sched, start.AddDate(0, 0, 14)))
}

func TestOccurrence_BeforeStartDate(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sched := &Schedule{
		ID: "s1",
		Recurrence: &RecurrenceRule{
			Frequency: FreqDaily,
			Interval:  1,
			StartDate: start,
		},
		Active: true,
	}

	// Before the series begins, the first occurrence is the anchor.
	anchor, _, err := Occurrence(sched, start.AddDate(0, 0, -10))
	require.NoError(t, err)
	require.Equal(t, start, anchor)
}

func TestWindow_Contains(t *testing.T) {
	win := Window{
		Start: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	require.True(t, win.Contains(win.Start))
	require.True(t, win.Contains(win.End))
	require.False(t, win.Contains(win.Start.Add(-time.Second)))
	require.False(t, win.Contains(win.End.Add(time.Second)))
}
