package checkin

import "errors"

var (
	// ErrAttendanceNotFound indicates the attendance record doesn't exist.
	ErrAttendanceNotFound = errors.New("attendance not found")
	// ErrInvalidItem indicates a request item missing required fields.
	ErrInvalidItem = errors.New("invalid check-in item")
	// ErrCodeSpaceExhausted indicates the generator could not find an unused
	// active code within its retry budget.
	ErrCodeSpaceExhausted = errors.New("security code space exhausted")
)
