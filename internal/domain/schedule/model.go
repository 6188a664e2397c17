package schedule

import "time"

// Frequency enumerates recurrence-rule frequencies.
type Frequency string

const (
	FreqDaily  Frequency = "daily"
	FreqWeekly Frequency = "weekly"
)

// WeeklyPattern is the simple weekly representation: one weekday, with the
// schedule's time-of-day and offsets applied around it.
type WeeklyPattern struct {
	DayOfWeek time.Weekday `json:"day_of_week"`
}

// RecurrenceRule is a minimal recurrence representation: every Interval
// days or weeks from StartDate, optionally bounded by Until.
type RecurrenceRule struct {
	Frequency Frequency  `json:"frequency"`
	Interval  int        `json:"interval"`
	StartDate time.Time  `json:"start_date"`
	Until     *time.Time `json:"until,omitempty"`
}

// Schedule describes when check-in opens for an area. Exactly one of Weekly
// or Recurrence is authoritative.
type Schedule struct {
	ID                         string          `json:"id"`
	Name                       string          `json:"name"`
	Weekly                     *WeeklyPattern  `json:"weekly,omitempty"`
	Recurrence                 *RecurrenceRule `json:"recurrence,omitempty"`
	TimeOfDayMinutes           int             `json:"time_of_day_minutes"`
	CheckinStartOffsetMin      int             `json:"checkin_start_offset_min"`
	CheckinEndOffsetMin        int             `json:"checkin_end_offset_min"`
	EffectiveEndDate           *time.Time      `json:"effective_end_date,omitempty"`
	AutoInactivateWhenComplete bool            `json:"auto_inactivate_when_complete"`
	Active                     bool            `json:"active"`
}

// Window is the effective check-in open interval for one occurrence.
// Start never follows End for a valid schedule.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the instant falls inside the window, inclusive at
// both ends.
func (w Window) Contains(at time.Time) bool {
	return !at.Before(w.Start) && !at.After(w.End)
}
