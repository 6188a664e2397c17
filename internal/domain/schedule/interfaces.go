package schedule

import "context"

// Repository provides schedule persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Schedule, error)
	ListForLocation(ctx context.Context, locationID string) ([]Schedule, error)
}
