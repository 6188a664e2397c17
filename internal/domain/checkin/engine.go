package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/metrics"
	"github.com/jmorrell/narthex/internal/repository/repoerr"
)

// Engine decides admission for single check-in intents.
type Engine struct {
	ledger      CapacityLedger
	schedules   ScheduleResolver
	attendance  AttendanceRepository
	people      PersonRepository
	idempotency IdempotencyRepository
	codes       CodeIssuer
	logger      *slog.Logger
	now         func() time.Time
}

// NewEngine creates an admission engine.
func NewEngine(
	ledger CapacityLedger,
	schedules ScheduleResolver,
	attendance AttendanceRepository,
	people PersonRepository,
	idempotency IdempotencyRepository,
	codes CodeIssuer,
	logger *slog.Logger,
	opts ...EngineOption,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		ledger:      ledger,
		schedules:   schedules,
		attendance:  attendance,
		people:      people,
		idempotency: idempotency,
		codes:       codes,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// Admit runs the admission algorithm for one item. Business rejections come
// back as Result values; the error return is reserved for infrastructure
// failures.
func (e *Engine) Admit(ctx context.Context, item RequestItem) (Result, error) {
	if item.PersonID == "" || item.LocationID == "" {
		return Result{}, ErrInvalidItem
	}

	// A replay against a terminal prior outcome returns that outcome
	// unchanged.
	if item.IdempotencyKey != "" {
		prior, err := e.idempotency.Get(ctx, item.IdempotencyKey)
		if err != nil && !errors.Is(err, repoerr.ErrNotFound) {
			return Result{}, fmt.Errorf("loading idempotency key: %w", err)
		}
		if prior != nil {
			return *prior, nil
		}
	}

	res, err := e.admit(ctx, item)
	if err != nil {
		return Result{}, err
	}

	if item.IdempotencyKey != "" {
		if err := e.idempotency.Put(ctx, item.IdempotencyKey, &res); err != nil {
			e.logger.Error("storing idempotency result", "key", item.IdempotencyKey, "error", err)
		}
	}
	metrics.Checkins.WithLabelValues(res.Outcome.String()).Inc()
	return res, nil
}

func (e *Engine) admit(ctx context.Context, item RequestItem) (Result, error) {
	now := e.now()

	person, err := e.people.Get(ctx, item.PersonID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return rejection(OutcomeNotFound, "person not found"), nil
		}
		return Result{}, fmt.Errorf("loading person %s: %w", item.PersonID, err)
	}
	personRef := &PersonSummary{ID: person.ID, FirstName: person.FirstName, LastName: person.LastName}

	desired, err := e.ledger.Get(ctx, item.LocationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return rejection(OutcomeNotFound, "location not found"), nil
		}
		return Result{}, err
	}

	sched, res, err := e.resolveSchedule(ctx, item, desired.ID, now)
	if err != nil || res != nil {
		if res != nil {
			res.Person = personRef
			return *res, nil
		}
		return Result{}, err
	}

	occurrence := schedule.DateOf(now)
	if item.OccurrenceDate != nil {
		occurrence = schedule.DateOf(*item.OccurrenceDate)
	} else if anchor, _, aerr := schedule.Occurrence(sched, now); aerr == nil {
		occurrence = anchor
	}

	// Retried replays must not double-admit while the first admission is
	// still open.
	if existing, ferr := e.attendance.FindOpen(ctx, person.ID, desired.ID, sched.ID, occurrence); ferr == nil {
		return e.existingResult(existing, personRef, desired.Name), nil
	} else if !errors.Is(ferr, repoerr.ErrNotFound) {
		return Result{}, fmt.Errorf("checking open attendance: %w", ferr)
	}

	target, err := e.resolveOverflow(ctx, desired)
	if err != nil {
		return Result{}, err
	}
	if target.ID != desired.ID {
		if existing, ferr := e.attendance.FindOpen(ctx, person.ID, target.ID, sched.ID, occurrence); ferr == nil {
			return e.existingResult(existing, personRef, target.Name), nil
		} else if !errors.Is(ferr, repoerr.ErrNotFound) {
			return Result{}, fmt.Errorf("checking open attendance: %w", ferr)
		}
	}

	if err := e.ledger.TryAdmit(ctx, target.ID); err != nil {
		switch {
		case errors.Is(err, location.ErrHardCapacity):
			r := rejection(OutcomeAtCapacity, fmt.Sprintf("%s is full", target.Name))
			r.Person = personRef
			r.Location = &LocationSummary{ID: target.ID, Name: target.Name}
			return r, nil
		case errors.Is(err, location.ErrLocationInactive), errors.Is(err, location.ErrLocationNotFound):
			return rejection(OutcomeNotFound, "location not available"), nil
		default:
			return Result{}, err
		}
	}

	res2, err := e.createAttendance(ctx, item, person, target, sched.ID, occurrence, now)
	if err != nil {
		// The seat was taken but the record failed; give the seat back so
		// the count stays truthful.
		if rerr := e.ledger.Release(ctx, target.ID); rerr != nil {
			e.logger.Error("releasing seat after failed create", "location_id", target.ID, "error", rerr)
		}
		return Result{}, err
	}
	return res2, nil
}

func (e *Engine) resolveSchedule(ctx context.Context, item RequestItem, locationID string, now time.Time) (*schedule.Schedule, *Result, error) {
	if item.ScheduleID != "" {
		sched, err := e.schedules.Get(ctx, item.ScheduleID)
		if err != nil {
			if errors.Is(err, schedule.ErrScheduleNotFound) {
				r := rejection(OutcomeNotFound, "schedule not found")
				return nil, &r, nil
			}
			return nil, nil, err
		}
		if !schedule.IsOpen(sched, now) {
			r := rejection(OutcomeOutsideSchedule, "check-in is not open")
			return nil, &r, nil
		}
		return sched, nil, nil
	}

	sched, err := e.schedules.CurrentOpen(ctx, locationID, now)
	if err != nil {
		if errors.Is(err, schedule.ErrNoOpenSchedule) {
			r := rejection(OutcomeOutsideSchedule, "check-in is not open")
			return nil, &r, nil
		}
		return nil, nil, err
	}
	return sched, nil, nil
}

// resolveOverflow applies the single-hop overflow rule: a full location with
// auto-assign redirects once, and an overflow that is itself full simply
// rejects rather than chaining further.
func (e *Engine) resolveOverflow(ctx context.Context, desired *location.Location) (*location.Location, error) {
	status := location.DeriveStatus(desired.CurrentCount, desired.SoftThreshold, desired.HardThreshold)
	if status != location.StatusFull || !desired.AutoAssignOverflow || desired.OverflowLocationID == nil {
		return desired, nil
	}
	overflow, err := e.ledger.Get(ctx, *desired.OverflowLocationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return desired, nil
		}
		return nil, err
	}
	e.logger.Info("overflow redirect",
		"from", desired.ID, "to", overflow.ID)
	return overflow, nil
}

func (e *Engine) existingResult(rec *Attendance, person *PersonSummary, locationName string) Result {
	start := rec.StartAt
	res := Result{
		Success:      true,
		Outcome:      OutcomeAlreadyCheckedIn,
		Message:      "already checked in",
		AttendanceID: rec.ID,
		CheckInTime:  &start,
		Person:       person,
		Location:     &LocationSummary{ID: rec.LocationID, Name: locationName},
	}
	if rec.SecurityCode != nil {
		res.SecurityCode = *rec.SecurityCode
	}
	return res
}

func (e *Engine) createAttendance(
	ctx context.Context,
	item RequestItem,
	person *Person,
	target *location.Location,
	scheduleID string,
	occurrence time.Time,
	now time.Time,
) (Result, error) {
	prior, err := e.attendance.CountForPerson(ctx, person.ID)
	if err != nil {
		return Result{}, fmt.Errorf("counting prior attendance: %w", err)
	}

	rec := &Attendance{
		ID:             uuid.NewString(),
		PersonID:       person.ID,
		LocationID:     target.ID,
		ScheduleID:     scheduleID,
		OccurrenceDate: occurrence,
		StartAt:        now,
		FirstTime:      prior == 0,
		DeviceID:       item.DeviceID,
		Note:           item.Note,
	}
	if item.GenerateSecurityCode {
		code, err := e.codes.Issue(ctx, person.CampusID)
		if err != nil {
			return Result{}, fmt.Errorf("issuing security code: %w", err)
		}
		rec.SecurityCode = &code
	}

	if err := e.attendance.Create(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("creating attendance: %w", err)
	}

	e.logger.Info("admitted",
		"person_id", person.ID,
		"location_id", target.ID,
		"schedule_id", scheduleID,
		"first_time", rec.FirstTime)

	res := Result{
		Success:      true,
		Outcome:      OutcomeAdmitted,
		AttendanceID: rec.ID,
		CheckInTime:  &rec.StartAt,
		Person:       &PersonSummary{ID: person.ID, FirstName: person.FirstName, LastName: person.LastName},
		Location:     &LocationSummary{ID: target.ID, Name: target.Name},
	}
	if rec.SecurityCode != nil {
		res.SecurityCode = *rec.SecurityCode
	}
	return res, nil
}

func rejection(outcome Outcome, message string) Result {
	return Result{Success: false, Outcome: outcome, Message: message}
}
