// Package repoerr holds the repository sentinel errors in a leaf package so
// domain packages can match on them without importing repository, whose
// interfaces reference domain types.
package repoerr

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAtHardCapacity is returned when a conditional admit finds the
	// location already at its hard threshold
	ErrAtHardCapacity = errors.New("location at hard capacity")

	// ErrInactive is returned when the target location is not active
	ErrInactive = errors.New("location inactive")
)
