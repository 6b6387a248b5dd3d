package field

import "fmt"

// Cell is the state of one grid point.
type Cell struct {
	E      Vec3
	B      Vec3
	Source uint32 // index into the run's source list, 0 is inert
}

// Lattice is a cubic grid of side N indexed [z][y][x], stored flat as
// z*N*N + y*N + x.
type Lattice struct {
	n     int
	cells []Cell
}

func NewLattice(n int) (*Lattice, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrLatticeTooSmall, n)
	}
	return &Lattice{n: n, cells: make([]Cell, n*n*n)}, nil
}

func (l *Lattice) Side() int { return l.n }
func (l *Lattice) Len() int  { return len(l.cells) }

// Cells exposes the backing slice in row-major order (x fastest).
func (l *Lattice) Cells() []Cell { return l.cells }

func (l *Lattice) Index(x, y, z int) int {
	return (z*l.n+y)*l.n + x
}

func (l *Lattice) Coords(i int) (x, y, z int) {
	x = i % l.n
	y = (i / l.n) % l.n
	z = i / (l.n * l.n)
	return x, y, z
}

func (l *Lattice) Contains(x, y, z int) bool {
	return x >= 0 && x < l.n && y >= 0 && y < l.n && z >= 0 && z < l.n
}

func (l *Lattice) At(x, y, z int) Cell {
	return l.cells[l.Index(x, y, z)]
}

func (l *Lattice) Set(x, y, z int, c Cell) error {
	if !l.Contains(x, y, z) {
		return fmt.Errorf("%w: (%d, %d, %d) with side %d", ErrOutOfBounds, x, y, z, l.n)
	}
	l.cells[l.Index(x, y, z)] = c
	return nil
}

// MaxSource returns the largest source index referenced by any cell.
func (l *Lattice) MaxSource() uint32 {
	var max uint32
	for i := range l.cells {
		if l.cells[i].Source > max {
			max = l.cells[i].Source
		}
	}
	return max
}

// Buffers holds the two lattices of the leapfrog update. Current is read,
// Next is written, and Swap flips their roles after a full pass.
type Buffers struct {
	Current *Lattice
	Next    *Lattice
}

// NewBuffers takes ownership of initial as the current buffer and allocates
// a second lattice of the same side.
func NewBuffers(initial *Lattice) *Buffers {
	return &Buffers{
		Current: initial,
		Next:    &Lattice{n: initial.n, cells: make([]Cell, len(initial.cells))},
	}
}

func (b *Buffers) Swap() {
	b.Current, b.Next = b.Next, b.Current
}
