package metrics

import (
	"math"

	"github.com/san-kum/maxwell/internal/field"
)

// NonFinite counts cells holding NaN or Inf in the latest observed lattice.
// Overflow is not prevented by the solver; this only reports it.
type NonFinite struct {
	name  string
	count int
	first int
}

func NewNonFinite() *NonFinite {
	return &NonFinite{name: "non_finite_cells", first: -1}
}

func (n *NonFinite) Name() string { return n.name }

func (n *NonFinite) Observe(step int, t float32, lat *field.Lattice) {
	n.count = 0
	for _, c := range lat.Cells() {
		if !c.E.IsValid() || !c.B.IsValid() {
			n.count++
		}
	}
	if n.count > 0 && n.first < 0 {
		n.first = step
	}
}

func (n *NonFinite) Value() float64 { return float64(n.count) }

// FirstStep is the first step that produced a non-finite cell, or -1.
func (n *NonFinite) FirstStep() int { return n.first }

func (n *NonFinite) Reset() {
	n.count = 0
	n.first = -1
}

// PeakField tracks the largest |E| seen at any cell over the run.
type PeakField struct {
	name string
	peak float64
}

func NewPeakField() *PeakField {
	return &PeakField{name: "peak_e"}
}

func (p *PeakField) Name() string { return p.name }

func (p *PeakField) Observe(step int, t float32, lat *field.Lattice) {
	for _, c := range lat.Cells() {
		if m := c.E.NormSq(); m > p.peak {
			p.peak = m
		}
	}
}

func (p *PeakField) Value() float64 { return math.Sqrt(p.peak) }

func (p *PeakField) Reset() { p.peak = 0 }
