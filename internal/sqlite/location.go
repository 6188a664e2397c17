package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/repository"
)

// LocationRepository implements repository.LocationRepository for SQLite
type LocationRepository struct {
	db *DB
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create inserts a location
func (r *LocationRepository) Create(ctx context.Context, loc *location.Location) error {
	query := `
		INSERT INTO locations (
			id, campus_id, name, parent_id, soft_threshold, hard_threshold,
			child_ratio, overflow_location_id, auto_assign_overflow, active,
			current_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		loc.ID,
		loc.CampusID,
		loc.Name,
		loc.ParentID,
		loc.SoftThreshold,
		loc.HardThreshold,
		loc.ChildRatio,
		loc.OverflowLocationID,
		loc.AutoAssignOverflow,
		loc.Active,
		loc.CurrentCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

const locationColumns = `
	id, campus_id, name, parent_id, soft_threshold, hard_threshold,
	child_ratio, overflow_location_id, auto_assign_overflow, active,
	current_count
`

// Get retrieves a location by id
func (r *LocationRepository) Get(ctx context.Context, id string) (*location.Location, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	loc, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

// ListByCampus returns the active locations of a campus ordered by name
func (r *LocationRepository) ListByCampus(ctx context.Context, campusID string) ([]location.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE campus_id = ? AND active = 1 ORDER BY name`,
		campusID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locs []location.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locs = append(locs, *loc)
	}
	return locs, rows.Err()
}

// TryAdmit atomically takes one seat while below the hard threshold. The
// conditional update is the serialization point the capacity invariant
// depends on; two concurrent admits can never both pass the threshold check.
func (r *LocationRepository) TryAdmit(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE locations
		SET current_count = current_count + 1
		WHERE id = ? AND active = 1
		  AND (hard_threshold IS NULL OR current_count < hard_threshold)
	`, id)
	if err != nil {
		return fmt.Errorf("failed to admit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var active bool
	err = r.db.QueryRowContext(ctx, `SELECT active FROM locations WHERE id = ?`, id).Scan(&active)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check location: %w", err)
	}
	if !active {
		return repository.ErrInactive
	}
	return repository.ErrAtHardCapacity
}

// ForceAdmit takes a seat unconditionally (supervisor override path)
func (r *LocationRepository) ForceAdmit(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE locations SET current_count = current_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to force admit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Release returns one seat, floored at zero
func (r *LocationRepository) Release(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE locations
		SET current_count = CASE WHEN current_count > 0 THEN current_count - 1 ELSE 0 END
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to release: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (*location.Location, error) {
	var loc location.Location
	var parentID, overflowID sql.NullString
	var soft, hard, ratio sql.NullInt64
	err := row.Scan(
		&loc.ID,
		&loc.CampusID,
		&loc.Name,
		&parentID,
		&soft,
		&hard,
		&ratio,
		&overflowID,
		&loc.AutoAssignOverflow,
		&loc.Active,
		&loc.CurrentCount,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		loc.ParentID = &parentID.String
	}
	if overflowID.Valid {
		loc.OverflowLocationID = &overflowID.String
	}
	if soft.Valid {
		v := int(soft.Int64)
		loc.SoftThreshold = &v
	}
	if hard.Valid {
		v := int(hard.Int64)
		loc.HardThreshold = &v
	}
	if ratio.Valid {
		v := int(ratio.Int64)
		loc.ChildRatio = &v
	}
	return &loc, nil
}
