package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmorrell/narthex/internal/repository/repoerr"
)

// Batch fans multi-person requests out to the admission engine.
//
// Each item is admitted independently: a full room for one child never rolls
// back a sibling's seat. Partial admission beats an all-or-nothing
// transaction when a family is waiting at the kiosk.
type Batch struct {
	engine     *Engine
	attendance AttendanceRepository
	ledger     CapacityLedger
	logger     *slog.Logger
	now        func() time.Time
}

// NewBatch creates a batch orchestrator over the engine.
func NewBatch(engine *Engine, attendance AttendanceRepository, ledger CapacityLedger, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		engine:     engine,
		attendance: attendance,
		ledger:     ledger,
		logger:     logger,
		now:        engine.now,
	}
}

// CheckIn admits every item independently, preserving input order in the
// results.
func (b *Batch) CheckIn(ctx context.Context, items []RequestItem) BatchResult {
	out := BatchResult{Results: make([]Result, 0, len(items))}
	for i, item := range items {
		res, err := b.engine.Admit(ctx, item)
		if err != nil {
			// One item's infrastructure failure must not abort its
			// siblings.
			b.logger.Error("batch item failed", "index", i, "person_id", item.PersonID, "error", err)
			res = Result{
				Success: false,
				Outcome: OutcomeInternalError,
				Message: "check-in failed, please see a volunteer",
			}
		}
		if res.Success {
			out.SuccessCount++
		} else {
			out.FailureCount++
		}
		out.Results = append(out.Results, res)
	}
	out.AllSucceeded = out.FailureCount == 0
	return out
}

// Checkout ends an attendance record and releases its seat. Calling it on an
// already-ended record is a no-op.
func (b *Batch) Checkout(ctx context.Context, attendanceID string) (*Attendance, error) {
	rec, err := b.attendance.Get(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("loading attendance %s: %w", attendanceID, err)
	}
	if rec.EndAt != nil {
		return rec, nil
	}

	at := b.now()
	ended, err := b.attendance.End(ctx, attendanceID, at)
	if err != nil {
		return nil, fmt.Errorf("ending attendance %s: %w", attendanceID, err)
	}
	if ended {
		if err := b.ledger.Release(ctx, rec.LocationID); err != nil {
			b.logger.Error("releasing seat on checkout", "location_id", rec.LocationID, "error", err)
		}
	}
	rec.EndAt = &at
	return rec, nil
}
