package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmorrell/narthex/internal/repository/repoerr"
)

// Service resolves schedules and their check-in windows.
type Service struct {
	schedules Repository
	logger    *slog.Logger
}

// NewService creates a schedule service.
func NewService(schedules Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{schedules: schedules, logger: logger}
}

// Get loads a schedule by id.
func (s *Service) Get(ctx context.Context, id string) (*Schedule, error) {
	sched, err := s.schedules.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("loading schedule %s: %w", id, err)
	}
	return sched, nil
}

// CurrentOpen returns the first schedule attached to the location that is
// open at asOf.
func (s *Service) CurrentOpen(ctx context.Context, locationID string, asOf time.Time) (*Schedule, error) {
	scheds, err := s.schedules.ListForLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("listing schedules for location %s: %w", locationID, err)
	}
	for i := range scheds {
		if IsOpen(&scheds[i], asOf) {
			return &scheds[i], nil
		}
	}
	return nil, ErrNoOpenSchedule
}

// ListOpenForLocation returns every schedule open at asOf, for the kiosk
// configuration read model.
func (s *Service) ListOpenForLocation(ctx context.Context, locationID string, asOf time.Time) ([]Schedule, error) {
	scheds, err := s.schedules.ListForLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("listing schedules for location %s: %w", locationID, err)
	}
	var open []Schedule
	for i := range scheds {
		if IsOpen(&scheds[i], asOf) {
			open = append(open, scheds[i])
		}
	}
	return open, nil
}
