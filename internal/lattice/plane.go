package lattice

import (
	"errors"
	"fmt"
)

// Axis names the axis a Plane is cut perpendicular to.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

var (
	ErrBadAxis    = errors.New("lattice: unknown axis")
	ErrSliceRange = errors.New("lattice: slice index out of range")
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", uint8(a))
	}
}

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadAxis, s)
}

// Plane is a copied-out 2D cross-section. Cells are stored row-major with u
// varying fastest. For AxisZ (u, v) = (x, y), for AxisX (u, v) = (z, y) and
// for AxisY (u, v) = (x, z).
type Plane struct {
	Axis  Axis
	Index int
	W, H  int
	Cells []Cell
}

// At returns the cell at plane coordinates (u, v).
func (p Plane) At(u, v int) Cell { return p.Cells[v*p.W+u] }

// Count returns the number of cells of kind k in the plane.
func (p Plane) Count(k Kind) int {
	total := 0
	for _, c := range p.Cells {
		if c.Kind == k {
			total++
		}
	}
	return total
}

// Slice copies the cross-section perpendicular to axis at index. Indices on
// the wrapped axes are normalized; a y index outside [0, N) is an error.
func (l *Lattice) Slice(axis Axis, index int) (Plane, error) {
	p, err := l.sliceHeader(axis, index)
	if err != nil {
		return Plane{}, err
	}
	p.Cells = make([]Cell, l.N*l.N)
	l.fillPlane(&p)
	return p, nil
}

// SliceInto refills an existing plane in place, reallocating only when the
// size changed. The plane keeps its axis; index follows the Slice rules.
func (l *Lattice) SliceInto(p *Plane, axis Axis, index int) error {
	fresh, err := l.sliceHeader(axis, index)
	if err != nil {
		return err
	}
	if len(p.Cells) != l.N*l.N {
		p.Cells = make([]Cell, l.N*l.N)
	}
	p.Axis, p.Index, p.W, p.H = fresh.Axis, fresh.Index, fresh.W, fresh.H
	l.fillPlane(p)
	return nil
}

func (l *Lattice) sliceHeader(axis Axis, index int) (Plane, error) {
	n := l.N
	switch axis {
	case AxisX, AxisZ:
		index = l.WrapAxis(index)
	case AxisY:
		if index < 0 || index >= n {
			return Plane{}, fmt.Errorf("%w: y=%d, n=%d", ErrSliceRange, index, n)
		}
	default:
		return Plane{}, fmt.Errorf("%w: %d", ErrBadAxis, axis)
	}
	return Plane{Axis: axis, Index: index, W: n, H: n}, nil
}

func (l *Lattice) fillPlane(p *Plane) {
	n := l.N
	for v := 0; v < n; v++ {
		for u := 0; u < n; u++ {
			var i int
			switch p.Axis {
			case AxisZ:
				i = u + v*n + p.Index*n*n
			case AxisX:
				i = p.Index + v*n + u*n*n
			case AxisY:
				i = u + p.Index*n + v*n*n
			}
			p.Cells[v*n+u] = l.cells[i]
		}
	}
}
