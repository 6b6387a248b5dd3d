package field

import (
	"fmt"
	"strings"
)

// Boundary selects how derivatives are taken on the outer faces.
type Boundary int

const (
	// Clip treats everything outside the domain as zero field.
	Clip Boundary = iota
	// Fit treats the face as the true edge and uses a one-sided difference.
	Fit
)

func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clip":
		return Clip, nil
	case "fit":
		return Fit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBoundary, s)
}

func (b Boundary) String() string {
	switch b {
	case Clip:
		return "clip"
	case Fit:
		return "fit"
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// diff is the one-axis stencil shared by Derivative and Lattice.Gradients.
// back is ignored at i == 0 and fwd at i == n-1.
func diff(b Boundary, density float32, back, here, fwd Vec3, i, n int) Vec3 {
	switch {
	case i == 0:
		if b == Fit {
			return fwd.Sub(here).Scale(density)
		}
		return fwd.Scale(density * 0.5)
	case i == n-1:
		if b == Fit {
			return here.Sub(back).Scale(density)
		}
		return back.Scale(density * -0.5)
	default:
		return fwd.Sub(back).Scale(density * 0.5)
	}
}

// Derivative returns the directional derivative at position i of values,
// a field sampled along one axis, scaled by density.
func Derivative(b Boundary, density float32, values []Vec3, i int) Vec3 {
	n := len(values)
	var back, fwd Vec3
	if i > 0 {
		back = values[i-1]
	}
	if i < n-1 {
		fwd = values[i+1]
	}
	return diff(b, density, back, values[i], fwd, i, n)
}

// Gradients holds the six directional derivatives of E and B at one point.
type Gradients struct {
	DEx, DEy, DEz Vec3
	DBx, DBy, DBz Vec3
}

func (g Gradients) CurlE() Vec3 { return Curl(g.DEx, g.DEy, g.DEz) }
func (g Gradients) CurlB() Vec3 { return Curl(g.DBx, g.DBy, g.DBz) }

// Gradients evaluates the derivatives of both fields at (x, y, z) along
// every axis under boundary policy b.
func (l *Lattice) Gradients(b Boundary, density float32, x, y, z int) Gradients {
	idx := l.Index(x, y, z)
	var g Gradients
	g.DEx, g.DBx = l.axis(b, density, idx, x, 1)
	g.DEy, g.DBy = l.axis(b, density, idx, y, l.n)
	g.DEz, g.DBz = l.axis(b, density, idx, z, l.n*l.n)
	return g
}

func (l *Lattice) axis(b Boundary, density float32, idx, i, stride int) (dE, dB Vec3) {
	here := &l.cells[idx]
	var back, fwd Cell
	if i > 0 {
		back = l.cells[idx-stride]
	}
	if i < l.n-1 {
		fwd = l.cells[idx+stride]
	}
	dE = diff(b, density, back.E, here.E, fwd.E, i, l.n)
	dB = diff(b, density, back.B, here.B, fwd.B, i, l.n)
	return dE, dB
}
