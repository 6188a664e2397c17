package location

import "context"

// Repository provides location persistence with atomic occupancy updates.
//
// TryAdmit and Release are the sole mutation points for current_count. The
// implementation must serialize them per location (a conditional UPDATE is
// sufficient) so two concurrent admits can never overshoot the hard threshold.
type Repository interface {
	Get(ctx context.Context, id string) (*Location, error)
	ListByCampus(ctx context.Context, campusID string) ([]Location, error)
	TryAdmit(ctx context.Context, id string) error
	ForceAdmit(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
}
