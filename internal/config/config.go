package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/maxwell/internal/field"
)

const (
	DefaultPermittivity = 8.85e-12
	DefaultPermeability = 1.2566e-6
	DefaultDt           = 1e-11
	DefaultSteps        = 100
	DefaultDensity      = 30
	DefaultSideLength   = 1
	DefaultBoundary     = "clip"

	EnvPrefix = "MAXWELL"
)

// Object types understood by the scene builder.
const (
	ObjectPoint = "point"
	ObjectPlane = "plane"
	ObjectWire  = "wire"
)

var (
	ErrInvalidConstant = errors.New("config: invalid constant")
	ErrUnknownObject   = errors.New("config: unknown object type")
	ErrBadObject       = errors.New("config: malformed object")
)

// Manifest describes one run: the physical constants, the lattice size and
// the objects placed on it, applied in order.
type Manifest struct {
	Constants Constants `yaml:"constants" mapstructure:"constants"`
	Lattice   Lattice   `yaml:"lattice" mapstructure:"lattice"`
	Objects   []Object  `yaml:"objects" mapstructure:"objects"`
}

type Constants struct {
	E0                 float32 `yaml:"e0" mapstructure:"e0"`
	M0                 float32 `yaml:"m0" mapstructure:"m0"`
	Dt                 float32 `yaml:"dt" mapstructure:"dt"`
	Steps              int     `yaml:"steps" mapstructure:"steps"`
	TimeCullingFactor  int     `yaml:"time_culling_factor" mapstructure:"time_culling_factor"`
	SpaceCullingFactor int     `yaml:"space_culling_factor" mapstructure:"space_culling_factor"`
	BoundaryCondition  string  `yaml:"boundary_condition" mapstructure:"boundary_condition"`
}

// Lattice sizes the grid: the side is Density * SideLength points.
type Lattice struct {
	Density    int `yaml:"density" mapstructure:"density"`
	SideLength int `yaml:"side_length" mapstructure:"side_length"`
}

func (l Lattice) Side() int { return l.Density * l.SideLength }

// Object is a point, plane or wire. Location holds [x, y, z] for a point,
// a single coordinate for a plane and the two fixed coordinates of a wire.
type Object struct {
	Type             string    `yaml:"type" mapstructure:"type"`
	Axis             string    `yaml:"axis,omitempty" mapstructure:"axis"`
	Location         []int     `yaml:"location,flow" mapstructure:"location"`
	E                []float32 `yaml:"E,flow,omitempty" mapstructure:"E"`
	B                []float32 `yaml:"B,flow,omitempty" mapstructure:"B"`
	Amplitude        float32   `yaml:"amplitude,omitempty" mapstructure:"amplitude"`
	AngularFrequency float32   `yaml:"angular_frequency,omitempty" mapstructure:"angular_frequency"`
}

// EVec and BVec return the object's field values, zero when omitted.
func (o Object) EVec() field.Vec3 { return vec(o.E) }
func (o Object) BVec() field.Vec3 { return vec(o.B) }

func vec(v []float32) field.Vec3 {
	if len(v) != 3 {
		return field.Vec3{}
	}
	return field.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func DefaultConfig() *Manifest {
	return &Manifest{
		Constants: Constants{
			E0:                 DefaultPermittivity,
			M0:                 DefaultPermeability,
			Dt:                 DefaultDt,
			Steps:              DefaultSteps,
			TimeCullingFactor:  1,
			SpaceCullingFactor: 1,
			BoundaryCondition:  DefaultBoundary,
		},
		Lattice: Lattice{
			Density:    DefaultDensity,
			SideLength: DefaultSideLength,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("constants.e0", d.Constants.E0)
	v.SetDefault("constants.m0", d.Constants.M0)
	v.SetDefault("constants.dt", d.Constants.Dt)
	v.SetDefault("constants.steps", d.Constants.Steps)
	v.SetDefault("constants.time_culling_factor", d.Constants.TimeCullingFactor)
	v.SetDefault("constants.space_culling_factor", d.Constants.SpaceCullingFactor)
	v.SetDefault("constants.boundary_condition", d.Constants.BoundaryCondition)
	v.SetDefault("lattice.density", d.Lattice.Density)
	v.SetDefault("lattice.side_length", d.Lattice.SideLength)
}

// Load reads a JSON or YAML manifest. Missing constants take their defaults
// and any of them can be overridden from the environment, e.g.
// MAXWELL_CONSTANTS_STEPS=500. Files without an extension are read as JSON.
func Load(path string) (*Manifest, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	m := &Manifest{}
	if err := v.Unmarshal(m); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return m, nil
}

func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that can be checked without knowing the
// lattice contents. Coordinate ranges are checked when the scene is built.
func (m *Manifest) Validate() error {
	c := m.Constants
	switch {
	case c.E0 <= 0:
		return fmt.Errorf("%w: e0 must be positive, got %g", ErrInvalidConstant, c.E0)
	case c.M0 <= 0:
		return fmt.Errorf("%w: m0 must be positive, got %g", ErrInvalidConstant, c.M0)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConstant, c.Dt)
	case c.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidConstant, c.Steps)
	case c.TimeCullingFactor < 1:
		return fmt.Errorf("%w: time_culling_factor must be at least 1, got %d", ErrInvalidConstant, c.TimeCullingFactor)
	case c.SpaceCullingFactor < 1:
		return fmt.Errorf("%w: space_culling_factor must be at least 1, got %d", ErrInvalidConstant, c.SpaceCullingFactor)
	case m.Lattice.Density < 1:
		return fmt.Errorf("%w: density must be positive, got %d", ErrInvalidConstant, m.Lattice.Density)
	case m.Lattice.SideLength < 1:
		return fmt.Errorf("%w: side_length must be positive, got %d", ErrInvalidConstant, m.Lattice.SideLength)
	case m.Lattice.Side() < 2:
		return fmt.Errorf("%w: lattice side must be at least 2, got %d", ErrInvalidConstant, m.Lattice.Side())
	}
	if _, err := field.ParseBoundary(c.BoundaryCondition); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, o := range m.Objects {
		if err := o.validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

func (o Object) validate() error {
	switch o.Type {
	case ObjectPoint:
		if len(o.Location) != 3 {
			return fmt.Errorf("%w: point needs 3 coordinates, got %d", ErrBadObject, len(o.Location))
		}
	case ObjectPlane:
		if len(o.Location) != 1 {
			return fmt.Errorf("%w: plane needs 1 coordinate, got %d", ErrBadObject, len(o.Location))
		}
	case ObjectWire:
		if len(o.Location) != 2 {
			return fmt.Errorf("%w: wire needs 2 coordinates, got %d", ErrBadObject, len(o.Location))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownObject, o.Type)
	}

	if o.Type != ObjectPoint {
		if _, err := field.ParseAxis(o.Axis); err != nil {
			return err
		}
	}
	for _, v := range [][]float32{o.E, o.B} {
		if len(v) != 0 && len(v) != 3 {
			return fmt.Errorf("%w: field vectors need 3 components, got %d", ErrBadObject, len(v))
		}
	}
	return nil
}
