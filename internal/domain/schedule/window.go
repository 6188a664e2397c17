package schedule

import "time"

// DateOf truncates an instant to midnight in its own zone.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ComputeWindow resolves the effective check-in window for the occurrence
// anchored to occurrenceDate. For weekly schedules the anchor is the most
// recent occurrence of the weekday on/before occurrenceDate; for recurrence
// rules it is the next occurrence at/after occurrenceDate.
func ComputeWindow(sched *Schedule, occurrenceDate time.Time) (Window, error) {
	anchor, err := anchorDate(sched, DateOf(occurrenceDate))
	if err != nil {
		return Window{}, err
	}
	base := anchor.Add(time.Duration(sched.TimeOfDayMinutes) * time.Minute)
	return Window{
		Start: base.Add(time.Duration(sched.CheckinStartOffsetMin) * time.Minute),
		End:   base.Add(time.Duration(sched.CheckinEndOffsetMin) * time.Minute),
	}, nil
}

// Occurrence resolves both the anchor date and the window governing asOf.
func Occurrence(sched *Schedule, asOf time.Time) (time.Time, Window, error) {
	anchor, err := anchorDate(sched, DateOf(asOf))
	if err != nil {
		return time.Time{}, Window{}, err
	}
	base := anchor.Add(time.Duration(sched.TimeOfDayMinutes) * time.Minute)
	win := Window{
		Start: base.Add(time.Duration(sched.CheckinStartOffsetMin) * time.Minute),
		End:   base.Add(time.Duration(sched.CheckinEndOffsetMin) * time.Minute),
	}
	return anchor, win, nil
}

// IsOpen reports whether check-in is open for the schedule at asOf.
//
// An auto-inactivating schedule whose effective end date has passed is
// permanently closed, even if its pattern would otherwise still match.
func IsOpen(sched *Schedule, asOf time.Time) bool {
	if !sched.Active {
		return false
	}
	if sched.AutoInactivateWhenComplete && sched.EffectiveEndDate != nil {
		endOfDay := DateOf(*sched.EffectiveEndDate).AddDate(0, 0, 1)
		if !asOf.Before(endOfDay) {
			return false
		}
	}
	_, win, err := Occurrence(sched, asOf)
	if err != nil {
		return false
	}
	return win.Contains(asOf)
}

func anchorDate(sched *Schedule, date time.Time) (time.Time, error) {
	switch {
	case sched.Weekly != nil && sched.Recurrence == nil:
		back := (int(date.Weekday()) - int(sched.Weekly.DayOfWeek) + 7) % 7
		return date.AddDate(0, 0, -back), nil
	case sched.Recurrence != nil && sched.Weekly == nil:
		return nextRecurrence(sched.Recurrence, date)
	default:
		return time.Time{}, ErrNoPattern
	}
}

func nextRecurrence(rule *RecurrenceRule, date time.Time) (time.Time, error) {
	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}
	stepDays := interval
	if rule.Frequency == FreqWeekly {
		stepDays = interval * 7
	}

	start := DateOf(rule.StartDate)
	next := start
	if date.After(start) {
		days := int(date.Sub(start).Hours() / 24)
		steps := days / stepDays
		next = start.AddDate(0, 0, steps*stepDays)
		if next.Before(date) {
			next = next.AddDate(0, 0, stepDays)
		}
	}
	if rule.Until != nil && next.After(DateOf(*rule.Until)) {
		return time.Time{}, ErrNoOccurrence
	}
	return next, nil
}
