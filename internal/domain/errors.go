package domain

import "errors"

var (
	// ErrNotFound is returned when a requested point does not exist.
	ErrNotFound = errors.New("point not found")
	// ErrInsufficientData is returned when fewer than three points are
	// available for the paradox analysis.
	ErrInsufficientData = errors.New("insufficient data: at least 3 points required")
)
