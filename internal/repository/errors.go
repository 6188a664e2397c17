package repository

import "github.com/jmorrell/narthex/internal/repository/repoerr"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = repoerr.ErrNotFound

	// ErrAtHardCapacity is returned when a conditional admit finds the
	// location already at its hard threshold
	ErrAtHardCapacity = repoerr.ErrAtHardCapacity

	// ErrInactive is returned when the target location is not active
	ErrInactive = repoerr.ErrInactive
)
