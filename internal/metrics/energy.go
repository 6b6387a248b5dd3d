package metrics

import (
	"math"

	"github.com/san-kum/maxwell/internal/field"
)

// FieldEnergy sums |E|^2 + |B|^2 over every cell. It is an unweighted
// stability measure, not a physical energy.
func FieldEnergy(lat *field.Lattice) float64 {
	total := 0.0
	for _, c := range lat.Cells() {
		total += c.E.NormSq() + c.B.NormSq()
	}
	return total
}

// Energy records the field energy after every step. Value reports the
// energy of the latest observed lattice.
type Energy struct {
	name   string
	series []float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(step int, t float32, lat *field.Lattice) {
	e.series = append(e.series, FieldEnergy(lat))
}

func (e *Energy) Value() float64 {
	if len(e.series) == 0 {
		return 0
	}
	return e.series[len(e.series)-1]
}

// Series returns the per-step energies, step 0 first.
func (e *Energy) Series() []float64 { return e.series }

func (e *Energy) Reset() {
	e.series = e.series[:0]
}

// EnergyDrift tracks the largest relative departure from the initial energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(step int, t float32, lat *field.Lattice) {
	energy := FieldEnergy(lat)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / e.initialEnergy
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
