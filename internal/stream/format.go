// Package stream implements the binary frame protocol consumed by external
// viewers.
//
// The stream is little-endian. It opens with a two-float header
//
//	[scale float32][dt float32]
//
// where scale is the effective points per unit length and dt the effective
// time between exported frames. Frames follow, each a sequence of 30-byte
// cell records in row-major order (x fastest, z slowest):
//
//	Ex 0 Ey 0 Ez 1 Bx 0 By 0 Bz marker
//
// Fields are float32, the single bytes between them are fixed separators,
// and the trailing marker tells the reader where the cell sits in the grid.
package stream

import (
	"errors"
	"math"
)

const (
	HeaderSize = 8
	RecordSize = 6*4 + 6
)

// Fixed separators written between the six field components.
const (
	sepComponent byte = 0
	sepField     byte = 1
)

// Marker is the positional tag closing every cell record.
type Marker byte

const (
	Continue  Marker = 2
	EndRow    Marker = 3
	EndPlane  Marker = 4
	EndVolume Marker = 5
)

func (m Marker) String() string {
	switch m {
	case Continue:
		return "continue"
	case EndRow:
		return "end-row"
	case EndPlane:
		return "end-plane"
	case EndVolume:
		return "end-volume"
	}
	return "invalid"
}

func (m Marker) Valid() bool {
	return m >= Continue && m <= EndVolume
}

// MarkerFor picks the marker of the cell at (x, y, z) in a lattice of side
// n. The highest-order boundary wins.
func MarkerFor(x, y, z, n int) Marker {
	last := n - 1
	switch {
	case x == last && y == last && z == last:
		return EndVolume
	case x == last && y == last:
		return EndPlane
	case x == last:
		return EndRow
	default:
		return Continue
	}
}

var (
	ErrBadSeparator = errors.New("stream: bad field separator")
	ErrBadMarker    = errors.New("stream: bad cell marker")
	ErrShortFrame   = errors.New("stream: frame truncated")
)

// Header carries what a reader needs to rebuild coordinates and times.
type Header struct {
	Scale float32 // density / spatial decimation
	Dt    float32 // dt * temporal decimation
}

func NewHeader(density float32, spaceDecimation int, dt float32, timeDecimation int) Header {
	return Header{
		Scale: density / float32(spaceDecimation),
		Dt:    dt * float32(timeDecimation),
	}
}

// SpaceDecimation recovers the spatial decimation given the base density.
func (h Header) SpaceDecimation(density float32) int {
	return int(math.Round(float64(density / h.Scale)))
}

// TimeDecimation recovers the temporal decimation given the base timestep.
func (h Header) TimeDecimation(dt float32) int {
	return int(math.Round(float64(h.Dt / dt)))
}

// DecimatedSize is the number of records in a non-initial frame of a side-n
// lattice exported every s points.
func DecimatedSize(n, s int) int {
	if s < 1 {
		s = 1
	}
	k := n / s
	return k * k * k
}
