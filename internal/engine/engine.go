package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/maxwell/internal/field"
	"github.com/san-kum/maxwell/internal/source"
	"github.com/san-kum/maxwell/internal/stream"
)

// Phase is the engine's position in its run.
type Phase int

const (
	// Priming: header and initial frame not yet written.
	Priming Phase = iota
	// Stepping: leapfrog updates remain.
	Stepping
	// Done: every step has been consumed.
	Done
)

func (p Phase) String() string {
	switch p {
	case Priming:
		return "priming"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// FrameWriter receives the output stream. *stream.Encoder implements it.
type FrameWriter interface {
	WriteHeader(h stream.Header) error
	WriteFrame(lat *field.Lattice) error
	WriteCell(c field.Cell, x, y, z, n int) error
	Flush() error
}

// Metric accumulates a scalar over the run.
type Metric interface {
	Name() string
	Observe(step int, t float32, lat *field.Lattice)
	Value() float64
	Reset()
}

// Observer is notified with the freshly computed lattice after every step,
// including step 0 (the initial condition).
type Observer interface {
	OnStep(step int, t float32, lat *field.Lattice)
}

type Result struct {
	StepsTaken int
	Frames     int
	Records    int64
	Elapsed    time.Duration
	Metrics    map[string]float64
}

// Engine advances E and B on a double-buffered lattice and streams the
// exported snapshots.
type Engine struct {
	params    Params
	bufs      *field.Buffers
	sources   source.List
	currents  []field.Vec3
	out       FrameWriter
	keep      []int
	workers   int
	log       zerolog.Logger
	metrics   []Metric
	observers []Observer

	phase   Phase
	step    int
	frames  int
	records int64
}

type Option func(*Engine)

// WithWorkers bounds the goroutines used for the per-cell pass. Values
// below 2 run the pass on the calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetric(m Metric) Option {
	return func(e *Engine) { e.metrics = append(e.metrics, m) }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// New takes ownership of lat as the initial condition. sources must start
// with the inert entry and cover every index referenced by lat.
func New(lat *field.Lattice, sources source.List, p Params, out FrameWriter, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if lat == nil {
		return nil, fmt.Errorf("%w: nil lattice", ErrInvalidParams)
	}
	if len(sources) == 0 || sources[0].Kind != source.Inert {
		return nil, fmt.Errorf("%w: index 0 must be the inert source", ErrSourceIndex)
	}
	if hi := lat.MaxSource(); int(hi) >= len(sources) {
		return nil, fmt.Errorf("%w: index %d with %d sources", ErrSourceIndex, hi, len(sources))
	}

	e := &Engine{
		params:   p,
		bufs:     field.NewBuffers(lat),
		sources:  sources,
		currents: make([]field.Vec3, len(sources)),
		out:      out,
		workers:  runtime.NumCPU(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := 0; i < lat.Len(); i++ {
		x, y, z := lat.Coords(i)
		if p.Keeps(x, y, z) {
			e.keep = append(e.keep, i)
		}
	}
	return e, nil
}

func (e *Engine) Phase() Phase               { return e.phase }
func (e *Engine) Current() *field.Lattice    { return e.bufs.Current }
func (e *Engine) StepIndex() int             { return e.step }
func (e *Engine) ExportedCellsPerFrame() int { return len(e.keep) }

// Prime writes the header and the undecimated initial frame.
func (e *Engine) Prime() error {
	if e.phase != Priming {
		return fmt.Errorf("%w: prime in %s", ErrPhase, e.phase)
	}
	if err := e.out.WriteHeader(e.params.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := e.out.WriteFrame(e.bufs.Current); err != nil {
		return fmt.Errorf("writing initial frame: %w", err)
	}
	e.frames++
	e.records += int64(e.bufs.Current.Len())
	e.notify(0, 0, e.bufs.Current)

	e.step = 1
	e.phase = Stepping
	if e.step >= e.params.Steps {
		e.phase = Done
	}
	e.log.Debug().Int("side", e.bufs.Current.Side()).Int("steps", e.params.Steps).
		Int("workers", e.workers).Msg("engine primed")
	return nil
}

// Step performs one leapfrog update, writes its frame if the step is an
// export step, and swaps the buffers.
func (e *Engine) Step(ctx context.Context) error {
	if e.phase != Stepping {
		return fmt.Errorf("%w: step in %s", ErrPhase, e.phase)
	}

	k := e.step
	t := float32(k) * e.params.Dt
	start := time.Now()

	e.currents = e.sources.Currents(t, e.currents)
	cur, next := e.bufs.Current, e.bufs.Next
	if err := e.pass(ctx, cur, next); err != nil {
		return &StepError{Step: k, Time: t, Wrapped: err}
	}

	if e.params.Exports(k) {
		n := next.Side()
		cells := next.Cells()
		for _, i := range e.keep {
			x, y, z := next.Coords(i)
			if err := e.out.WriteCell(cells[i], x, y, z, n); err != nil {
				return &StepError{Step: k, Time: t, Wrapped: err}
			}
		}
		e.frames++
		e.records += int64(len(e.keep))
	}

	e.bufs.Swap()
	e.notify(k, t, e.bufs.Current)

	e.step++
	if e.step >= e.params.Steps {
		e.phase = Done
	}
	e.log.Debug().Int("step", k).Dur("took", time.Since(start)).Msg("step")
	return nil
}

// Run primes the engine if needed and steps until Done. The output is
// flushed on every return path.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	firstStep := e.step

	var runErr error
	if e.phase == Priming {
		for _, m := range e.metrics {
			m.Reset()
		}
		runErr = e.Prime()
		firstStep = e.step
	}
	for runErr == nil && e.phase == Stepping {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		runErr = e.Step(ctx)
	}

	if err := e.out.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("flushing output: %w", err)
	}

	result := &Result{
		StepsTaken: e.step - firstStep,
		Frames:     e.frames,
		Records:    e.records,
		Elapsed:    time.Since(start),
		Metrics:    make(map[string]float64, len(e.metrics)),
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		e.log.Error().Err(runErr).Int("step", e.step).Msg("run aborted")
		return result, runErr
	}
	e.log.Debug().Dur("elapsed", result.Elapsed).Int("frames", e.frames).Msg("engine done")
	return result, nil
}

func (e *Engine) notify(step int, t float32, lat *field.Lattice) {
	for _, m := range e.metrics {
		m.Observe(step, t, lat)
	}
	for _, o := range e.observers {
		o.OnStep(step, t, lat)
	}
}

// pass derives next from cur. z-planes are split into contiguous chunks,
// one per worker; cells within a step are independent.
func (e *Engine) pass(ctx context.Context, cur, next *field.Lattice) error {
	n := cur.Side()
	if e.workers < 2 {
		e.updatePlanes(cur, next, 0, n)
		return nil
	}

	workers := e.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.updatePlanes(cur, next, lo, hi)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) updatePlanes(cur, next *field.Lattice, zLo, zHi int) {
	p := e.params
	n := cur.Side()
	src := cur.Cells()
	dst := next.Cells()
	eps := p.Permittivity
	epsMu := p.Permittivity * p.Permeability

	for z := zLo; z < zHi; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				idx := cur.Index(x, y, z)
				c := src[idx]
				g := cur.Gradients(p.Boundary, p.Density, x, y, z)
				curlE, curlB := g.CurlE(), g.CurlB()
				j := e.currents[c.Source]

				dst[idx] = field.Cell{
					B:      c.B.Sub(curlE.Scale(p.Dt)),
					E:      c.E.Add(curlB.Div(epsMu).Sub(j.Div(eps)).Scale(p.Dt)),
					Source: c.Source,
				}
			}
		}
	}
}
