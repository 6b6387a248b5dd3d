package engine_test

import (
	"bytes"
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/maxwell/internal/engine"
	"github.com/san-kum/maxwell/internal/field"
	"github.com/san-kum/maxwell/internal/metrics"
	"github.com/san-kum/maxwell/internal/source"
	"github.com/san-kum/maxwell/internal/stream"
)

func unitParams(steps int) engine.Params {
	return engine.Params{
		Permittivity:    1,
		Permeability:    1,
		Dt:              0.5,
		Steps:           steps,
		Boundary:        field.Clip,
		TimeDecimation:  1,
		SpaceDecimation: 1,
		Density:         1,
	}
}

func newLattice(n int) *field.Lattice {
	lat, err := field.NewLattice(n)
	Expect(err).NotTo(HaveOccurred())
	return lat
}

type failingWriter struct {
	*stream.Encoder
	failCells bool
}

func (f *failingWriter) WriteCell(c field.Cell, x, y, z, n int) error {
	if f.failCells {
		return errors.New("disk full")
	}
	return f.Encoder.WriteCell(c, x, y, z, n)
}

type recordingObserver struct {
	steps []int
	times []float32
}

func (r *recordingObserver) OnStep(step int, t float32, lat *field.Lattice) {
	r.steps = append(r.steps, step)
	r.times = append(r.times, t)
}

var _ = Describe("Engine", func() {
	var (
		buf *bytes.Buffer
		enc *stream.Encoder
		ctx context.Context
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		enc = stream.NewEncoder(buf)
		ctx = context.Background()
	})

	Describe("construction", func() {
		It("rejects invalid parameters", func() {
			p := unitParams(3)
			p.Dt = 0
			_, err := engine.New(newLattice(2), source.NewList(), p, enc)
			Expect(err).To(MatchError(engine.ErrInvalidParams))
		})

		It("rejects an unknown boundary", func() {
			p := unitParams(3)
			p.Boundary = field.Boundary(9)
			_, err := engine.New(newLattice(2), source.NewList(), p, enc)
			Expect(err).To(MatchError(field.ErrUnknownBoundary))
		})

		It("rejects cells pointing past the source table", func() {
			lat := newLattice(2)
			Expect(lat.Set(1, 1, 1, field.Cell{Source: 2})).To(Succeed())
			_, err := engine.New(lat, source.NewList(), unitParams(3), enc)
			Expect(err).To(MatchError(engine.ErrSourceIndex))
		})

		It("requires the inert source at index 0", func() {
			sources := source.List{source.NewLine(field.AxisX, 1, 1)}
			_, err := engine.New(newLattice(2), sources, unitParams(3), enc)
			Expect(err).To(MatchError(engine.ErrSourceIndex))
		})
	})

	Describe("phases", func() {
		It("moves from priming through stepping to done", func() {
			eng, err := engine.New(newLattice(2), source.NewList(), unitParams(3), enc)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Phase()).To(Equal(engine.Priming))

			Expect(eng.Step(ctx)).To(MatchError(engine.ErrPhase))

			Expect(eng.Prime()).To(Succeed())
			Expect(eng.Phase()).To(Equal(engine.Stepping))
			Expect(eng.StepIndex()).To(Equal(1))
			Expect(eng.Prime()).To(MatchError(engine.ErrPhase))

			Expect(eng.Step(ctx)).To(Succeed())
			Expect(eng.Phase()).To(Equal(engine.Stepping))
			Expect(eng.Step(ctx)).To(Succeed())
			Expect(eng.Phase()).To(Equal(engine.Done))
			Expect(eng.Step(ctx)).To(MatchError(engine.ErrPhase))
		})

		It("is done right after priming when only the initial frame is requested", func() {
			eng, err := engine.New(newLattice(2), source.NewList(), unitParams(1), enc)
			Expect(err).NotTo(HaveOccurred())

			res, err := eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Phase()).To(Equal(engine.Done))
			Expect(res.StepsTaken).To(Equal(0))
			Expect(res.Frames).To(Equal(1))
			Expect(buf.Len()).To(Equal(stream.HeaderSize + 8*stream.RecordSize))
		})
	})

	Describe("stream output", func() {
		It("writes the header and a marker-terminated initial frame", func() {
			lat := newLattice(2)
			Expect(lat.Set(0, 0, 0, field.Cell{E: field.Vec3{Z: 1}})).To(Succeed())

			p := unitParams(1)
			p.Density = 2
			eng, err := engine.New(lat, source.NewList(), p, enc)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			dec := stream.NewDecoder(bytes.NewReader(buf.Bytes()))
			h, err := dec.ReadHeader()
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Scale).To(Equal(float32(2)))
			Expect(h.Dt).To(Equal(float32(0.5)))

			frame, err := dec.ReadFrame()
			Expect(err).NotTo(HaveOccurred())
			markers := make([]stream.Marker, 0, len(frame.Records))
			for _, r := range frame.Records {
				markers = append(markers, r.Marker)
			}
			Expect(markers).To(Equal([]stream.Marker{
				stream.Continue, stream.EndRow, stream.Continue, stream.EndPlane,
				stream.Continue, stream.EndRow, stream.Continue, stream.EndVolume,
			}))
			Expect(frame.Records[0].E).To(Equal(field.Vec3{Z: 1}))
		})

		It("applies time and space decimation", func() {
			p := unitParams(10)
			p.TimeDecimation = 3
			p.SpaceDecimation = 2
			eng, err := engine.New(newLattice(4), source.NewList(), p, enc)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.ExportedCellsPerFrame()).To(Equal(8))

			res, err := eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(9))
			Expect(res.Frames).To(Equal(4))
			Expect(res.Records).To(BeEquivalentTo(64 + 3*8))
			Expect(buf.Len()).To(Equal(stream.HeaderSize + (64+3*8)*stream.RecordSize))
		})

		It("wraps writer failures with the failing step", func() {
			w := &failingWriter{Encoder: enc, failCells: true}
			eng, err := engine.New(newLattice(2), source.NewList(), unitParams(4), w)
			Expect(err).NotTo(HaveOccurred())

			_, err = eng.Run(ctx)
			var stepErr *engine.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(1))
		})
	})

	Describe("field update", func() {
		It("keeps an empty lattice empty", func() {
			eng, err := engine.New(newLattice(3), source.NewList(), unitParams(6), enc)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			for _, c := range eng.Current().Cells() {
				Expect(c.E.IsZero()).To(BeTrue())
				Expect(c.B.IsZero()).To(BeTrue())
			}
		})

		It("induces B around a point of E after one step", func() {
			lat := newLattice(3)
			Expect(lat.Set(1, 1, 1, field.Cell{E: field.Vec3{Z: 1}})).To(Succeed())

			eng, err := engine.New(lat, source.NewList(), unitParams(2), enc)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			cur := eng.Current()
			// dt = 0.5, density = 1: each neighbour sees a half-weighted
			// one-sided difference of the centre's Ez.
			Expect(cur.At(1, 1, 1).E).To(Equal(field.Vec3{Z: 1}))
			Expect(cur.At(1, 1, 1).B).To(Equal(field.Vec3{}))
			Expect(cur.At(2, 1, 1).B).To(Equal(field.Vec3{Y: -0.25}))
			Expect(cur.At(0, 1, 1).B).To(Equal(field.Vec3{Y: 0.25}))
			Expect(cur.At(1, 2, 1).B).To(Equal(field.Vec3{X: 0.25}))
			Expect(cur.At(1, 0, 1).B).To(Equal(field.Vec3{X: -0.25}))
			Expect(cur.At(1, 1, 2).B).To(Equal(field.Vec3{}))
			Expect(cur.At(1, 1, 0).B).To(Equal(field.Vec3{}))
		})

		It("drives E with the cell's source current", func() {
			lat := newLattice(3)
			sources := source.NewList()
			idx := sources.Add(source.NewLine(field.AxisX, 1, 1))
			Expect(lat.Set(1, 1, 1, field.Cell{Source: idx})).To(Succeed())

			eng, err := engine.New(lat, sources, unitParams(2), enc)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Prime()).To(Succeed())
			Expect(eng.Step(ctx)).To(Succeed())

			want := -0.5 * math.Sin(0.5)
			got := eng.Current().At(1, 1, 1)
			Expect(float64(got.E.X)).To(BeNumerically("~", want, 1e-6))
			Expect(got.E.Y).To(BeZero())
			Expect(got.Source).To(Equal(idx))
			Expect(eng.Current().At(0, 0, 0).E.IsZero()).To(BeTrue())
		})

		It("keeps field energy bounded for a small time step", func() {
			lat := newLattice(6)
			Expect(lat.Set(2, 3, 3, field.Cell{E: field.Vec3{Z: 1}, B: field.Vec3{X: 0.5}})).To(Succeed())
			initial := metrics.FieldEnergy(lat)

			p := unitParams(40)
			p.Dt = 0.01
			energy := metrics.NewEnergy()
			eng, err := engine.New(lat, source.NewList(), p, enc, engine.WithMetric(energy))
			Expect(err).NotTo(HaveOccurred())
			res, err := eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(energy.Series()).To(HaveLen(40))
			for _, v := range energy.Series() {
				Expect(v).To(BeNumerically("<=", initial*1.05))
			}
			Expect(res.Metrics).To(HaveKey("energy"))
		})

		It("produces the same lattice serially and in parallel", func() {
			build := func() *field.Lattice {
				lat := newLattice(5)
				for i := range lat.Cells() {
					lat.Cells()[i].E = field.Vec3{X: float32(i%7) - 3, Y: float32(i % 3), Z: 0.25}
					lat.Cells()[i].B = field.Vec3{Z: float32(i%5) * 0.1}
				}
				return lat
			}
			p := unitParams(6)
			p.Dt = 0.05
			p.Boundary = field.Fit

			serial, err := engine.New(build(), source.NewList(), p, stream.NewEncoder(&bytes.Buffer{}), engine.WithWorkers(1))
			Expect(err).NotTo(HaveOccurred())
			parallel, err := engine.New(build(), source.NewList(), p, stream.NewEncoder(&bytes.Buffer{}), engine.WithWorkers(4))
			Expect(err).NotTo(HaveOccurred())

			_, err = serial.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = parallel.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(parallel.Current().Cells()).To(Equal(serial.Current().Cells()))
		})
	})

	Describe("observers and cancellation", func() {
		It("notifies observers for the initial frame and each step", func() {
			obs := &recordingObserver{}
			eng, err := engine.New(newLattice(2), source.NewList(), unitParams(4), enc, engine.WithObserver(obs))
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(obs.steps).To(Equal([]int{0, 1, 2, 3}))
			Expect(obs.times).To(Equal([]float32{0, 0.5, 1, 1.5}))
		})

		It("stops on a cancelled context and still flushes", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			eng, err := engine.New(newLattice(2), source.NewList(), unitParams(50), enc)
			Expect(err).NotTo(HaveOccurred())
			res, err := eng.Run(cctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Frames).To(Equal(1))
			Expect(buf.Len()).To(Equal(stream.HeaderSize + 8*stream.RecordSize))
		})
	})
})
