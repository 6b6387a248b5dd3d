package config

import "sort"

func constants(dt float32, steps, timeCull, spaceCull int, boundary string) Constants {
	return Constants{
		E0: DefaultPermittivity, M0: DefaultPermeability, Dt: dt, Steps: steps,
		TimeCullingFactor: timeCull, SpaceCullingFactor: spaceCull, BoundaryCondition: boundary,
	}
}

var Presets = map[string]*Manifest{
	"dipole": {
		Constants: constants(1e-11, 200, 2, 1, "clip"),
		Lattice:   Lattice{Density: 30, SideLength: 1},
		Objects: []Object{
			{Type: ObjectPoint, Location: []int{14, 15, 15}, E: []float32{0, 0, 1}, B: []float32{0, 0, 0}},
			{Type: ObjectPoint, Location: []int{16, 15, 15}, E: []float32{0, 0, -1}, B: []float32{0, 0, 0}},
		},
	},
	"plane-wave": {
		Constants: constants(1e-11, 300, 3, 1, "fit"),
		Lattice:   Lattice{Density: 30, SideLength: 1},
		Objects: []Object{
			{Type: ObjectPlane, Axis: "x", Location: []int{3}, E: []float32{0, 1, 0}, B: []float32{0, 0, 3.3e-9}},
		},
	},
	"wire": {
		Constants: constants(1e-11, 500, 5, 2, "clip"),
		Lattice:   Lattice{Density: 30, SideLength: 1},
		Objects: []Object{
			{Type: ObjectWire, Axis: "z", Location: []int{15, 15}, Amplitude: 1, AngularFrequency: 6.28e9},
		},
	},
	"quiet": {
		Constants: constants(1e-11, 10, 1, 1, "clip"),
		Lattice:   Lattice{Density: 10, SideLength: 1},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Manifest {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	m := *p
	m.Objects = make([]Object, len(p.Objects))
	for i, o := range p.Objects {
		o.Location = append([]int(nil), o.Location...)
		o.E = append([]float32(nil), o.E...)
		o.B = append([]float32(nil), o.B...)
		m.Objects[i] = o
	}
	return &m
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
