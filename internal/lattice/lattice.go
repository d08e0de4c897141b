package lattice

// Lattice stores a cubic volume of cells in x-fastest order: the linear
// index of (x, y, z) is x + y*N + z*N*N. The x and z axes wrap, y is bounded.
type Lattice struct {
	N     int
	cells []Cell
}

// New allocates an empty lattice of side n.
func New(n int) *Lattice {
	if n <= 0 {
		n = 1
	}
	return &Lattice{N: n, cells: make([]Cell, n*n*n)}
}

// Cells exposes the backing slice for bulk reads and writes.
func (l *Lattice) Cells() []Cell { return l.cells }

// Len returns the number of cells.
func (l *Lattice) Len() int { return len(l.cells) }

// Index returns the linear index of (x, y, z). Coordinates must already be in range.
func (l *Lattice) Index(x, y, z int) int {
	assertY(y, l.N)
	return x + y*l.N + z*l.N*l.N
}

// Coords is the inverse of Index.
func (l *Lattice) Coords(i int) (x, y, z int) {
	n := l.N
	return i % n, (i / n) % n, i / (n * n)
}

// Get reads a cell. x and z are wrapped; y must lie in [0, N).
func (l *Lattice) Get(x, y, z int) Cell {
	return l.cells[l.Index(l.WrapAxis(x), y, l.WrapAxis(z))]
}

// Set writes a cell. x and z are wrapped; y must lie in [0, N).
func (l *Lattice) Set(x, y, z int, c Cell) {
	l.cells[l.Index(l.WrapAxis(x), y, l.WrapAxis(z))] = c
}

// At reads the cell at a linear index.
func (l *Lattice) At(i int) Cell { return l.cells[i] }

// Put writes the cell at a linear index.
func (l *Lattice) Put(i int, c Cell) { l.cells[i] = c }

// WrapAxis maps a coordinate on a wrapped axis into [0, N).
func (l *Lattice) WrapAxis(v int) int {
	n := l.N
	switch {
	case v >= 0 && v < n:
		return v
	case v < 0 && v >= -n:
		return v + n
	case v >= n && v < 2*n:
		return v - n
	}
	return (v%n + n) % n
}

// ClampAxis pins a bounded-axis coordinate into [0, N).
func (l *Lattice) ClampAxis(v int) int {
	if v < 0 {
		return 0
	}
	if v >= l.N {
		return l.N - 1
	}
	return v
}

// Clear resets every cell to empty.
func (l *Lattice) Clear() {
	for i := range l.cells {
		l.cells[i] = Cell{}
	}
}

// Count returns the number of cells of the given kind.
func (l *Lattice) Count(k Kind) int {
	total := 0
	for _, c := range l.cells {
		if c.Kind == k {
			total++
		}
	}
	return total
}
