// Package setup turns a run manifest into the initial lattice, the source
// table and the engine parameters.
package setup

import (
	"errors"
	"fmt"

	"github.com/san-kum/maxwell/internal/config"
	"github.com/san-kum/maxwell/internal/engine"
	"github.com/san-kum/maxwell/internal/field"
	"github.com/san-kum/maxwell/internal/source"
)

var ErrOutOfRange = errors.New("setup: location out of range")

// PlacementError reports an object whose location falls outside the lattice.
type PlacementError struct {
	Object   int
	Type     string
	Location []int
	Side     int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("setup: object %d (%s) at %v is outside a lattice of side %d",
		e.Object, e.Type, e.Location, e.Side)
}

func (e *PlacementError) Unwrap() error { return ErrOutOfRange }

// Scene is everything the engine needs to start a run.
type Scene struct {
	Lattice *field.Lattice
	Sources source.List
	Params  engine.Params
}

// Build validates m and places its objects in manifest order. Points and
// planes replace whole cells, clearing any source. Wires keep the fields
// already present and attach one new source shared by every cell on the
// line.
func Build(m *config.Manifest) (*Scene, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	boundary, err := field.ParseBoundary(m.Constants.BoundaryCondition)
	if err != nil {
		return nil, err
	}

	lat, err := field.NewLattice(m.Lattice.Side())
	if err != nil {
		return nil, err
	}
	sources := source.NewList()

	for i, o := range m.Objects {
		if err := place(lat, &sources, o); err != nil {
			if errors.Is(err, ErrOutOfRange) {
				return nil, &PlacementError{Object: i, Type: o.Type, Location: o.Location, Side: lat.Side()}
			}
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}

	c := m.Constants
	return &Scene{
		Lattice: lat,
		Sources: sources,
		Params: engine.Params{
			Permittivity:    c.E0,
			Permeability:    c.M0,
			Dt:              c.Dt,
			Steps:           c.Steps,
			Boundary:        boundary,
			TimeDecimation:  c.TimeCullingFactor,
			SpaceDecimation: c.SpaceCullingFactor,
			Density:         float32(m.Lattice.Density),
		},
	}, nil
}

func place(lat *field.Lattice, sources *source.List, o config.Object) error {
	n := lat.Side()
	for _, v := range o.Location {
		if v < 0 || v >= n {
			return ErrOutOfRange
		}
	}

	switch o.Type {
	case config.ObjectPoint:
		x, y, z := o.Location[0], o.Location[1], o.Location[2]
		return lat.Set(x, y, z, field.Cell{E: o.EVec(), B: o.BVec()})

	case config.ObjectPlane:
		axis, err := field.ParseAxis(o.Axis)
		if err != nil {
			return err
		}
		cell := field.Cell{E: o.EVec(), B: o.BVec()}
		loc := o.Location[0]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				x, y, z := planeCoords(axis, loc, i, j)
				if err := lat.Set(x, y, z, cell); err != nil {
					return err
				}
			}
		}
		return nil

	case config.ObjectWire:
		axis, err := field.ParseAxis(o.Axis)
		if err != nil {
			return err
		}
		idx := sources.Add(source.NewLine(axis, o.Amplitude, o.AngularFrequency))
		a, b := o.Location[0], o.Location[1]
		cells := lat.Cells()
		for i := 0; i < n; i++ {
			x, y, z := wireCoords(axis, a, b, i)
			cells[lat.Index(x, y, z)].Source = idx
		}
		return nil
	}
	return fmt.Errorf("%w: %q", config.ErrUnknownObject, o.Type)
}

// planeCoords maps the running indices of a plane normal to axis at loc.
func planeCoords(axis field.Axis, loc, i, j int) (x, y, z int) {
	switch axis {
	case field.AxisX:
		return loc, j, i
	case field.AxisY:
		return j, loc, i
	default:
		return i, j, loc
	}
}

// wireCoords maps position i along a wire parallel to axis. The pair (a, b)
// names the two fixed coordinates in x, y, z order with the axis removed.
func wireCoords(axis field.Axis, a, b, i int) (x, y, z int) {
	switch axis {
	case field.AxisX:
		return i, a, b
	case field.AxisY:
		return a, i, b
	default:
		return a, b, i
	}
}
