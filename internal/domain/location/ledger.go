package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmorrell/narthex/internal/repository/repoerr"
)

// Ledger is the authoritative occupancy counter for locations.
type Ledger struct {
	locations Repository
	logger    *slog.Logger
}

// NewLedger creates a ledger over a location repository.
func NewLedger(locations Repository, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{locations: locations, logger: logger}
}

// TryAdmit atomically takes one seat in the location. It fails with
// ErrHardCapacity when the location is at its hard threshold, leaving the
// count unchanged. A location with no hard threshold admits unconditionally.
func (l *Ledger) TryAdmit(ctx context.Context, locationID string) error {
	err := l.locations.TryAdmit(ctx, locationID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repoerr.ErrAtHardCapacity):
		return ErrHardCapacity
	case errors.Is(err, repoerr.ErrInactive):
		return ErrLocationInactive
	case errors.Is(err, repoerr.ErrNotFound):
		return ErrLocationNotFound
	default:
		return fmt.Errorf("admitting to location %s: %w", locationID, err)
	}
}

// ForceAdmit takes a seat regardless of the hard threshold. The count still
// increments so snapshots stay truthful after a supervisor override.
func (l *Ledger) ForceAdmit(ctx context.Context, locationID string) error {
	err := l.locations.ForceAdmit(ctx, locationID)
	switch {
	case err == nil:
		l.logger.Warn("capacity override", "location_id", locationID)
		return nil
	case errors.Is(err, repoerr.ErrNotFound):
		return ErrLocationNotFound
	default:
		return fmt.Errorf("force-admitting to location %s: %w", locationID, err)
	}
}

// Release returns one seat, floored at zero so a double-release cannot drive
// the count negative.
func (l *Ledger) Release(ctx context.Context, locationID string) error {
	err := l.locations.Release(ctx, locationID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repoerr.ErrNotFound):
		return ErrLocationNotFound
	default:
		return fmt.Errorf("releasing location %s: %w", locationID, err)
	}
}

// Snapshot returns a point-in-time occupancy read. It never mutates state;
// staleness only affects advisory display, never an admit decision.
func (l *Ledger) Snapshot(ctx context.Context, locationID string) (Snapshot, error) {
	loc, err := l.locations.Get(ctx, locationID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return Snapshot{}, ErrLocationNotFound
		}
		return Snapshot{}, fmt.Errorf("loading location %s: %w", locationID, err)
	}
	return SnapshotOf(loc), nil
}

// Get loads the location row itself, for overflow resolution.
func (l *Ledger) Get(ctx context.Context, locationID string) (*Location, error) {
	loc, err := l.locations.Get(ctx, locationID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("loading location %s: %w", locationID, err)
	}
	return loc, nil
}

// ListByCampus returns all active locations for a campus with derived
// snapshots, for the kiosk configuration read model.
func (l *Ledger) ListByCampus(ctx context.Context, campusID string) ([]Snapshot, error) {
	locs, err := l.locations.ListByCampus(ctx, campusID)
	if err != nil {
		return nil, fmt.Errorf("listing locations for campus %s: %w", campusID, err)
	}
	snaps := make([]Snapshot, 0, len(locs))
	for i := range locs {
		snaps = append(snaps, SnapshotOf(&locs[i]))
	}
	return snaps, nil
}
