package mirror

import (
	"mirror-ca/internal/lattice"
	"mirror-ca/internal/parallel"
)

// claimOffsets lists, in resolution order, where an incoming particle may sit
// relative to the destination column and the drift that carries it there.
var claimOffsets = [3]struct{ dx, drift int }{
	{dx: 0, drift: 0},
	{dx: -1, drift: 1},
	{dx: 1, drift: -1},
}

// symmetric computes each destination cell from the previous lattice only.
// A cell is claimed by a neighbor exactly when that neighbor's own drift for
// the tick points at it, so the result is independent of evaluation order.
type symmetric struct {
	params  Params
	top     lattice.Kind
	bottom  lattice.Kind
	workers int
	slabs   []parallel.Span
}

func newSymmetric(cfg Config, top, bottom lattice.Kind) *symmetric {
	workers := parallel.Workers(cfg.Workers)
	return &symmetric{
		params:  cfg.Params,
		top:     top,
		bottom:  bottom,
		workers: workers,
		slabs:   parallel.Split(cfg.N, workers),
	}
}

func (s *symmetric) step(cur, nxt *lattice.Lattice, tick uint32) Counts {
	parts := parallel.Map(s.workers, s.slabs, func(span parallel.Span) Counts {
		return s.slab(cur, nxt, tick, span)
	})
	return parallel.Sum(parts, Counts.Add)
}

// slab writes every cell with z in span into nxt and returns the slab's counts.
func (s *symmetric) slab(cur, nxt *lattice.Lattice, tick uint32, span parallel.Span) Counts {
	n := cur.N
	var c Counts
	for z := span.Lo; z < span.Hi; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				i := cur.Index(x, y, z)
				nxt.Put(i, s.resolve(cur, x, y, z, tick, &c))
			}
		}
	}
	return c
}

func (s *symmetric) resolve(cur *lattice.Lattice, x, y, z int, tick uint32, c *Counts) lattice.Cell {
	n := cur.N
	src := cur.Get(x, y, z)
	if src.Kind == lattice.Annihilation {
		return src.Aged(int32(s.params.AnnihilationDecay))
	}

	var fromTop, fromBottom lattice.Cell
	if y > 0 {
		fromTop = incoming(cur, x, y-1, z, s.top, tick)
	}
	if y < n-1 {
		fromBottom = incoming(cur, x, y+1, z, s.bottom, tick)
	}

	var out lattice.Cell
	switch {
	case fromTop.Occupied() && fromBottom.Occupied():
		c.Annihilations++
		return lattice.Cell{Kind: lattice.Annihilation, Life: int32(s.params.AnnihilationLife)}
	case fromTop.Occupied():
		out = fromTop.Aged(1)
	case fromBottom.Occupied():
		out = fromBottom.Aged(1)
	}
	if out.Occupied() {
		c.live(out.Kind)
		return out
	}

	var row lattice.Kind
	switch y {
	case 0:
		row = s.top
	case n - 1:
		row = s.bottom
	default:
		return out
	}
	roll := lattice.SpawnRoll(x, z, tick)
	if !lattice.Spawns(roll, s.params.SpawnRate) {
		return out
	}
	c.spawned(row)
	c.live(row)
	return lattice.Cell{Kind: row, Life: int32(s.params.Lifespan), ID: roll}
}

// incoming returns the particle of kind k in row sy that moves into column x
// this tick, or the empty cell.
func incoming(cur *lattice.Lattice, x, sy, z int, k lattice.Kind, tick uint32) lattice.Cell {
	for _, o := range claimOffsets {
		cand := cur.Get(x+o.dx, sy, z)
		if cand.Kind == k && lattice.Drift(cand.ID, tick) == o.drift {
			return cand
		}
	}
	return lattice.Cell{}
}
