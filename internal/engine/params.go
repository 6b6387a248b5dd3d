package engine

import (
	"fmt"

	"github.com/san-kum/maxwell/internal/field"
	"github.com/san-kum/maxwell/internal/stream"
)

// Params are the scalar run parameters. They are fixed for a run.
type Params struct {
	Permittivity    float32 // e0
	Permeability    float32 // m0
	Dt              float32
	Steps           int // includes the initial frame
	Boundary        field.Boundary
	TimeDecimation  int
	SpaceDecimation int
	Density         float32 // points per unit length
}

func (p Params) Validate() error {
	if p.Permittivity <= 0 {
		return fmt.Errorf("%w: permittivity must be positive, got %g", ErrInvalidParams, p.Permittivity)
	}
	if p.Permeability <= 0 {
		return fmt.Errorf("%w: permeability must be positive, got %g", ErrInvalidParams, p.Permeability)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	}
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidParams, p.Steps)
	}
	if p.TimeDecimation < 1 {
		return fmt.Errorf("%w: time decimation must be at least 1, got %d", ErrInvalidParams, p.TimeDecimation)
	}
	if p.SpaceDecimation < 1 {
		return fmt.Errorf("%w: space decimation must be at least 1, got %d", ErrInvalidParams, p.SpaceDecimation)
	}
	if p.Density <= 0 {
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalidParams, p.Density)
	}
	if p.Boundary != field.Clip && p.Boundary != field.Fit {
		return fmt.Errorf("%w: %v", field.ErrUnknownBoundary, p.Boundary)
	}
	return nil
}

func (p Params) Header() stream.Header {
	return stream.NewHeader(p.Density, p.SpaceDecimation, p.Dt, p.TimeDecimation)
}

// Exports reports whether step k emits a frame.
func (p Params) Exports(k int) bool {
	return k%p.TimeDecimation == 0
}

// Keeps reports whether the cell at (x, y, z) survives spatial decimation.
func (p Params) Keeps(x, y, z int) bool {
	s := p.SpaceDecimation
	return (x+1)%s == 0 && (y+1)%s == 0 && (z+1)%s == 0
}
