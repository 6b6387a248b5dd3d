package stream

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/san-kum/maxwell/internal/field"
)

// Encoder writes the header and cell records. It buffers internally, so
// callers must Flush once the run is over.
type Encoder struct {
	w       *bufio.Writer
	buf     [RecordSize]byte
	records int64
	frames  int
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriterSize(w, 1<<16)}
}

func (e *Encoder) WriteHeader(h Header) error {
	var b [HeaderSize]byte
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(h.Scale))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(h.Dt))
	_, err := e.w.Write(b[:])
	return err
}

// WriteCell appends one record for the cell at (x, y, z) of a side-n grid.
func (e *Encoder) WriteCell(c field.Cell, x, y, z, n int) error {
	m := MarkerFor(x, y, z, n)
	putRecord(e.buf[:], c.E, c.B, m)
	if _, err := e.w.Write(e.buf[:]); err != nil {
		return err
	}
	e.records++
	if m == EndVolume {
		e.frames++
	}
	return nil
}

// WriteFrame writes every cell of lat, undecimated.
func (e *Encoder) WriteFrame(lat *field.Lattice) error {
	n := lat.Side()
	cells := lat.Cells()
	for i := range cells {
		x, y, z := lat.Coords(i)
		if err := e.WriteCell(cells[i], x, y, z, n); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) Flush() error { return e.w.Flush() }

// Records is the number of cell records written so far.
func (e *Encoder) Records() int64 { return e.records }

// Frames counts the end-of-volume markers written so far.
func (e *Encoder) Frames() int { return e.frames }

func putRecord(b []byte, E, B field.Vec3, m Marker) {
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
	}
	put(0, E.X)
	b[4] = sepComponent
	put(5, E.Y)
	b[9] = sepComponent
	put(10, E.Z)
	b[14] = sepField
	put(15, B.X)
	b[19] = sepComponent
	put(20, B.Y)
	b[24] = sepComponent
	put(25, B.Z)
	b[29] = byte(m)
}
