package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/maxwell/internal/field"
)

// Record is one decoded cell.
type Record struct {
	E, B   field.Vec3
	Marker Marker
}

type Frame struct {
	Records []Record
}

// Decoder reads a stream written by Encoder.
//
// Frame 0 is always complete and ends with an end-of-volume marker, which
// also tells the decoder the lattice side. Later frames may be spatially
// decimated; when the decimation does not divide the side their last record
// carries no end-of-volume marker, so the caller must set the expected
// record count with SetFrameSize.
type Decoder struct {
	r         *bufio.Reader
	buf       [RecordSize]byte
	side      int
	frameSize int
	offset    int64
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 1<<16)}
}

func (d *Decoder) ReadHeader() (Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return Header{}, fmt.Errorf("stream: reading header: %w", err)
	}
	d.offset += HeaderSize
	return Header{
		Scale: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Dt:    math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
	}, nil
}

func (d *Decoder) ReadRecord() (Record, error) {
	if _, err := io.ReadFull(d.r, d.buf[:]); err != nil {
		return Record{}, err
	}
	at := d.offset
	d.offset += RecordSize

	b := d.buf[:]
	for _, sep := range [...]struct {
		pos  int
		want byte
	}{{4, sepComponent}, {9, sepComponent}, {14, sepField}, {19, sepComponent}, {24, sepComponent}} {
		if b[sep.pos] != sep.want {
			return Record{}, fmt.Errorf("%w at byte %d: got %d", ErrBadSeparator, at+int64(sep.pos), b[sep.pos])
		}
	}
	m := Marker(b[29])
	if !m.Valid() {
		return Record{}, fmt.Errorf("%w at byte %d: got %d", ErrBadMarker, at+29, b[29])
	}

	get := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	return Record{
		E:      field.Vec3{X: get(0), Y: get(5), Z: get(10)},
		B:      field.Vec3{X: get(15), Y: get(20), Z: get(25)},
		Marker: m,
	}, nil
}

// ReadFrame reads records up to an end-of-volume marker or, once a frame
// size is set, up to that many records. It returns io.EOF when the stream
// ends cleanly between frames.
func (d *Decoder) ReadFrame() (Frame, error) {
	var f Frame
	if d.frameSize > 0 {
		f.Records = make([]Record, 0, d.frameSize)
	}
	for {
		rec, err := d.ReadRecord()
		if err != nil {
			if errors.Is(err, io.EOF) && len(f.Records) == 0 {
				return f, io.EOF
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return f, fmt.Errorf("%w after %d records", ErrShortFrame, len(f.Records))
			}
			return f, err
		}
		f.Records = append(f.Records, rec)

		if d.frameSize > 0 && len(f.Records) == d.frameSize {
			break
		}
		if rec.Marker == EndVolume {
			break
		}
	}

	if d.side == 0 {
		d.side = cubeRoot(len(f.Records))
	}
	return f, nil
}

// Side is the lattice side learned from the first complete frame, or 0.
func (d *Decoder) Side() int { return d.side }

// SetFrameSize fixes the record count of subsequent frames. Zero restores
// marker-delimited framing.
func (d *Decoder) SetFrameSize(n int) { d.frameSize = n }

func cubeRoot(n int) int {
	s := int(math.Round(math.Cbrt(float64(n))))
	if s*s*s != n {
		return 0
	}
	return s
}
