package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/maxwell/internal/field"
)

const jsonManifest = `{
  "constants": {
    "e0": 1, "m0": 2, "dt": 0.5, "steps": 40,
    "time_culling_factor": 2, "space_culling_factor": 3,
    "boundary_condition": "FIT"
  },
  "objects": [
    {"type": "point", "location": [1, 2, 3], "E": [1, 0, 0], "B": [0, 0, 2]},
    {"type": "plane", "axis": "y", "location": 4, "E": [0, 1, 0], "B": [0, 0, 0]},
    {"type": "wire", "axis": "z", "location": [5, 6], "amplitude": 2, "angular_frequency": 3}
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	m := DefaultConfig()
	require.NoError(t, m.Validate())
	assert.Equal(t, 30, m.Lattice.Side())
	assert.Equal(t, "clip", m.Constants.BoundaryCondition)
}

func TestLoad_JSON(t *testing.T) {
	m, err := Load(writeFile(t, "scene.json", jsonManifest))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, float32(1), m.Constants.E0)
	assert.Equal(t, float32(2), m.Constants.M0)
	assert.Equal(t, float32(0.5), m.Constants.Dt)
	assert.Equal(t, 40, m.Constants.Steps)
	assert.Equal(t, 2, m.Constants.TimeCullingFactor)
	assert.Equal(t, 3, m.Constants.SpaceCullingFactor)
	assert.Equal(t, "FIT", m.Constants.BoundaryCondition)

	// lattice section omitted: default density and side length
	assert.Equal(t, DefaultDensity, m.Lattice.Density)
	assert.Equal(t, DefaultSideLength, m.Lattice.SideLength)

	require.Len(t, m.Objects, 3)
	assert.Equal(t, []int{1, 2, 3}, m.Objects[0].Location)
	assert.Equal(t, field.Vec3{X: 1}, m.Objects[0].EVec())
	assert.Equal(t, field.Vec3{Z: 2}, m.Objects[0].BVec())
	assert.Equal(t, []int{4}, m.Objects[1].Location)
	assert.Equal(t, "y", m.Objects[1].Axis)
	assert.Equal(t, []int{5, 6}, m.Objects[2].Location)
	assert.Equal(t, float32(2), m.Objects[2].Amplitude)
	assert.Equal(t, float32(3), m.Objects[2].AngularFrequency)
}

func TestLoad_NoExtensionIsJSON(t *testing.T) {
	m, err := Load(writeFile(t, "scene", jsonManifest))
	require.NoError(t, err)
	assert.Equal(t, 40, m.Constants.Steps)
}

func TestLoad_YAMLDefaults(t *testing.T) {
	body := `
constants:
  dt: 0.25
lattice:
  density: 8
  side_length: 2
objects:
  - type: plane
    axis: x
    location: 3
    E: [0, 1, 0]
`
	m, err := Load(writeFile(t, "scene.yaml", body))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, float32(0.25), m.Constants.Dt)
	assert.Equal(t, DefaultSteps, m.Constants.Steps)
	assert.Equal(t, float32(DefaultPermittivity), m.Constants.E0)
	assert.Equal(t, 16, m.Lattice.Side())
	require.Len(t, m.Objects, 1)
	assert.Equal(t, field.Vec3{}, m.Objects[0].BVec())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MAXWELL_CONSTANTS_STEPS", "7")
	t.Setenv("MAXWELL_CONSTANTS_BOUNDARY_CONDITION", "fit")

	m, err := Load(writeFile(t, "scene.json", jsonManifest))
	require.NoError(t, err)
	assert.Equal(t, 7, m.Constants.Steps)
	assert.Equal(t, "fit", m.Constants.BoundaryCondition)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	want := GetPreset("wire")
	require.NotNil(t, want)

	path := filepath.Join(t.TempDir(), "wire.yaml")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want.Constants, got.Constants)
	assert.Equal(t, want.Lattice, got.Lattice)
	require.Len(t, got.Objects, 1)
	assert.Equal(t, want.Objects[0].Location, got.Objects[0].Location)
	assert.Equal(t, want.Objects[0].Axis, got.Objects[0].Axis)
	assert.Equal(t, want.Objects[0].AngularFrequency, got.Objects[0].AngularFrequency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Manifest)
		want   error
	}{
		{"zero dt", func(m *Manifest) { m.Constants.Dt = 0 }, ErrInvalidConstant},
		{"negative e0", func(m *Manifest) { m.Constants.E0 = -1 }, ErrInvalidConstant},
		{"no steps", func(m *Manifest) { m.Constants.Steps = 0 }, ErrInvalidConstant},
		{"zero time culling", func(m *Manifest) { m.Constants.TimeCullingFactor = 0 }, ErrInvalidConstant},
		{"zero space culling", func(m *Manifest) { m.Constants.SpaceCullingFactor = 0 }, ErrInvalidConstant},
		{"tiny lattice", func(m *Manifest) { m.Lattice = Lattice{Density: 1, SideLength: 1} }, ErrInvalidConstant},
		{"bad boundary", func(m *Manifest) { m.Constants.BoundaryCondition = "wrap" }, field.ErrUnknownBoundary},
		{"unknown object", func(m *Manifest) {
			m.Objects = []Object{{Type: "sphere", Location: []int{1}}}
		}, ErrUnknownObject},
		{"point with two coords", func(m *Manifest) {
			m.Objects = []Object{{Type: ObjectPoint, Location: []int{1, 2}}}
		}, ErrBadObject},
		{"wire without axis", func(m *Manifest) {
			m.Objects = []Object{{Type: ObjectWire, Location: []int{1, 2}}}
		}, field.ErrUnknownAxis},
		{"short vector", func(m *Manifest) {
			m.Objects = []Object{{Type: ObjectPoint, Location: []int{1, 2, 3}, E: []float32{1}}}
		}, ErrBadObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultConfig()
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), tt.want)
		})
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"dipole", "plane-wave", "quiet", "wire"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			m := GetPreset(name)
			require.NotNil(t, m)
			assert.NoError(t, m.Validate())
		})
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	m := GetPreset("dipole")
	m.Objects[0].Location[0] = 99
	m.Constants.Steps = 1

	again := GetPreset("dipole")
	assert.Equal(t, 14, again.Objects[0].Location[0])
	assert.NotEqual(t, 1, again.Constants.Steps)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}
