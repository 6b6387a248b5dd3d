// Package source models the time-varying current densities that drive the
// field. A Source is a closed tagged variant rather than an interface so the
// per-step current table is computed without dynamic dispatch.
package source

import (
	"fmt"
	"math"

	"github.com/san-kum/maxwell/internal/field"
)

type Kind uint8

const (
	// Inert never contributes current. Index 0 of every List is Inert.
	Inert Kind = iota
	// OscillatingLine is a sinusoidal current along a fixed grid axis.
	OscillatingLine
)

func (k Kind) String() string {
	switch k {
	case Inert:
		return "inert"
	case OscillatingLine:
		return "oscillating_line"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Source struct {
	Kind             Kind
	Amplitude        float32
	AngularFrequency float32
	Direction        field.Vec3
}

func NewInert() Source {
	return Source{Kind: Inert}
}

// NewLine returns an oscillating source whose current points along axis.
func NewLine(axis field.Axis, amplitude, angularFrequency float32) Source {
	return Source{
		Kind:             OscillatingLine,
		Amplitude:        amplitude,
		AngularFrequency: angularFrequency,
		Direction:        axis.Unit(),
	}
}

// CurrentDensity returns J at simulated time t.
func (s Source) CurrentDensity(t float32) field.Vec3 {
	switch s.Kind {
	case OscillatingLine:
		phase := t * s.AngularFrequency
		return s.Direction.Scale(s.Amplitude * float32(math.Sin(float64(phase))))
	default:
		return field.Vec3{}
	}
}

// List is the run's source table. It is append-only during setup and
// read-only once stepping begins.
type List []Source

func NewList() List {
	return List{NewInert()}
}

// Add appends s and returns the index cells should reference.
func (l *List) Add(s Source) uint32 {
	*l = append(*l, s)
	return uint32(len(*l) - 1)
}

// Currents fills dst with the current density of every source at time t,
// growing dst if needed. All cells sharing an index share the same entry.
func (l List) Currents(t float32, dst []field.Vec3) []field.Vec3 {
	if cap(dst) < len(l) {
		dst = make([]field.Vec3, len(l))
	}
	dst = dst[:len(l)]
	for i := range l {
		dst[i] = l[i].CurrentDensity(t)
	}
	return dst
}
