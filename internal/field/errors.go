package field

import "errors"

// Domain errors for grid construction and access.
var (
	// ErrLatticeTooSmall indicates a side shorter than two points; the
	// boundary stencils need at least one neighbour.
	ErrLatticeTooSmall = errors.New("field: lattice side must be at least 2")

	// ErrOutOfBounds indicates coordinates outside [0, N) on some axis.
	ErrOutOfBounds = errors.New("field: coordinates out of bounds")

	// ErrUnknownBoundary indicates an unrecognized boundary-condition name.
	ErrUnknownBoundary = errors.New("field: unknown boundary condition")

	// ErrUnknownAxis indicates an axis name other than x, y or z.
	ErrUnknownAxis = errors.New("field: unknown axis")

	// ErrSizeMismatch indicates two lattices of different sides.
	ErrSizeMismatch = errors.New("field: lattice size mismatch")
)
