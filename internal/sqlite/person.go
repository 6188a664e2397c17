package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/repository"
)

// PersonRepository implements repository.PersonRepository for SQLite
type PersonRepository struct {
	db *DB
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// Create inserts a person row (fixtures and the external sync path)
func (r *PersonRepository) Create(ctx context.Context, p *checkin.Person) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO people (id, campus_id, first_name, last_name, active) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CampusID, p.FirstName, p.LastName, p.Active)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

// Get retrieves a person by id
func (r *PersonRepository) Get(ctx context.Context, id string) (*checkin.Person, error) {
	var p checkin.Person
	err := r.db.QueryRowContext(ctx,
		`SELECT id, campus_id, first_name, last_name, active FROM people WHERE id = ?`, id).
		Scan(&p.ID, &p.CampusID, &p.FirstName, &p.LastName, &p.Active)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &p, nil
}
