package location

import "errors"

var (
	// ErrLocationNotFound indicates the location doesn't exist.
	ErrLocationNotFound = errors.New("location not found")
	// ErrLocationInactive indicates the location is not accepting admissions.
	ErrLocationInactive = errors.New("location inactive")
	// ErrHardCapacity indicates the location is at its hard threshold.
	ErrHardCapacity = errors.New("location at hard capacity")
)
