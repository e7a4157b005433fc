package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRectangles is returned when a configuration has nothing to pack.
	ErrNoRectangles = errors.New("no rectangles to pack")
	// ErrInvalidDimension is returned when a rectangle has a non-positive width or height.
	ErrInvalidDimension = errors.New("rectangle dimensions must be positive")
	// ErrNegativePadding is returned when either padding is below zero.
	ErrNegativePadding = errors.New("padding must be non-negative")
	// ErrNegativeTarget is returned when the target radius is below zero.
	ErrNegativeTarget = errors.New("target radius must be non-negative")
)

// ConfigurationError reports an invalid packing configuration. It is fatal
// to the solve call and raised before any optimization begins.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
