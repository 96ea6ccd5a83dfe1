package planner

import "errors"

var (
	// ErrOutOfBounds is returned for a cell outside the grid dimensions.
	ErrOutOfBounds = errors.New("cell out of bounds")

	// ErrInvalidEndpoint is returned when start or end is blocked or outside the grid.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrUnknownPolicy is returned by PolicyFor for an unrecognised policy name.
	ErrUnknownPolicy = errors.New("unknown cost policy")
)
