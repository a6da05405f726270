package grid

import "errors"

var (
	// ErrInvalidConfig indicates a grid that cannot be constructed.
	ErrInvalidConfig = errors.New("grid: invalid configuration")
)
