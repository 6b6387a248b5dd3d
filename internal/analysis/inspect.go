package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/maxwell/internal/stream"
)

// Report describes a decoded stream. Frame 0 is the full lattice; later
// frames hold only the spatially decimated cells, so their energies are
// not directly comparable with frame 0 unless the decimation is 1.
type Report struct {
	Header          stream.Header
	Side            int
	SpaceDecimation int
	FrameDt         float64
	Frames          int
	Records         int64
	Energy          []float64
	PeakE           []float64
	NonFinite       int
}

// Inspect decodes the whole stream. density is the lattice density the
// stream was produced with; the header only carries density divided by
// the spatial decimation, so it is needed to size decimated frames.
func Inspect(r io.Reader, density float32) (*Report, error) {
	dec := stream.NewDecoder(r)
	h, err := dec.ReadHeader()
	if err != nil {
		return nil, err
	}

	s, err := spaceDecimation(h, density)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Header:          h,
		SpaceDecimation: s,
		FrameDt:         float64(h.Dt),
	}

	for {
		f, err := dec.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("frame %d: %w", rep.Frames, err)
		}
		if rep.Frames == 0 {
			rep.Side = dec.Side()
			if rep.Side == 0 {
				return rep, fmt.Errorf("analysis: first frame holds %d records, not a cube", len(f.Records))
			}
			dec.SetFrameSize(stream.DecimatedSize(rep.Side, rep.SpaceDecimation))
		}
		rep.add(f)
	}
	return rep, nil
}

func (r *Report) add(f stream.Frame) {
	energy, peak := 0.0, 0.0
	for _, rec := range f.Records {
		if !rec.E.IsValid() || !rec.B.IsValid() {
			r.NonFinite++
			continue
		}
		e := rec.E.NormSq()
		energy += e + rec.B.NormSq()
		peak = math.Max(peak, e)
	}
	r.Energy = append(r.Energy, energy)
	r.PeakE = append(r.PeakE, math.Sqrt(peak))
	r.Frames++
	r.Records += int64(len(f.Records))
}

// PlaneMagnitude returns |E| on the z-th plane of a cubic frame, indexed
// [y][x]. Decimated frames are cubes of the kept cells, so z counts kept
// planes there.
func PlaneMagnitude(f stream.Frame, z int) ([][]float64, error) {
	side := int(math.Round(math.Cbrt(float64(len(f.Records)))))
	if side == 0 || side*side*side != len(f.Records) {
		return nil, fmt.Errorf("analysis: frame of %d records is not a cube", len(f.Records))
	}
	if z < 0 || z >= side {
		return nil, fmt.Errorf("analysis: plane %d outside frame of side %d", z, side)
	}

	grid := make([][]float64, side)
	base := z * side * side
	for y := range grid {
		grid[y] = make([]float64, side)
		for x := range grid[y] {
			grid[y][x] = math.Sqrt(f.Records[base+y*side+x].E.NormSq())
		}
	}
	return grid, nil
}

// ReadFrameAt decodes the stream up to and including frame k.
func ReadFrameAt(r io.Reader, density float32, k int) (stream.Frame, error) {
	dec := stream.NewDecoder(r)
	h, err := dec.ReadHeader()
	if err != nil {
		return stream.Frame{}, err
	}
	s, err := spaceDecimation(h, density)
	if err != nil {
		return stream.Frame{}, err
	}

	for i := 0; ; i++ {
		f, err := dec.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stream.Frame{}, fmt.Errorf("analysis: stream has only %d frames", i)
			}
			return stream.Frame{}, err
		}
		if i == 0 {
			dec.SetFrameSize(stream.DecimatedSize(dec.Side(), s))
		}
		if i == k {
			return f, nil
		}
	}
}

// ErrDensityMismatch is returned when the density given for a stream
// cannot have produced its header scale.
var ErrDensityMismatch = errors.New("analysis: density does not match stream header")

// spaceDecimation recovers the spatial decimation and checks that density
// divided by it reproduces the header scale.
func spaceDecimation(h stream.Header, density float32) (int, error) {
	s := h.SpaceDecimation(density)
	if s < 1 || h.Scale <= 0 {
		return 0, fmt.Errorf("%w: scale %g, density %g", ErrDensityMismatch, h.Scale, density)
	}
	want := float64(h.Scale)
	if got := float64(density / float32(s)); math.Abs(got-want) > 1e-4*want {
		return 0, fmt.Errorf("%w: scale %g, density %g gives %g", ErrDensityMismatch, h.Scale, density, got)
	}
	return s, nil
}
