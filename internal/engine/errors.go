package engine

import "errors"

var (
	// ErrInvalidSettings is returned when SolverSettings fail validation.
	ErrInvalidSettings = errors.New("invalid solver settings")
	// ErrStageFailed wraps the reason a single rotation stage produced no result.
	ErrStageFailed = errors.New("rotation stage failed")
)
