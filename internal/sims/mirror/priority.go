package mirror

import (
	"mirror-ca/internal/lattice"
)

// JitterChance is the percentage of moves in priority mode that also step
// on the y and z axes.
const JitterChance = 30

// targetFunc picks the destination index for the particle at index i.
type targetFunc func(l *lattice.Lattice, i int, c lattice.Cell, tick uint32) int

// priority moves particles one at a time in ascending linear index. The first
// particle to reach an empty destination keeps it and later arrivals are
// destroyed, so lower indices win every contest. The pass must stay
// sequential: running it concurrently changes which particle wins.
type priority struct {
	params Params
	top    lattice.Kind
	bottom lattice.Kind
	target targetFunc
}

func newPriority(cfg Config, top, bottom lattice.Kind) *priority {
	return &priority{params: cfg.Params, top: top, bottom: bottom, target: biasedTarget}
}

func (p *priority) step(cur, nxt *lattice.Lattice, tick uint32) Counts {
	nxt.Clear()
	var c Counts
	for i, src := range cur.Cells() {
		if !src.Kind.IsSpecies() {
			continue
		}
		moved := src.Aged(1)
		if !moved.Occupied() {
			continue
		}
		dst := p.target(cur, i, src, tick)
		if nxt.At(dst).Occupied() {
			c.destroyed(src.Kind)
			continue
		}
		nxt.Put(dst, moved)
		c.live(src.Kind)
	}
	p.spawnRows(nxt, tick, &c)
	return c
}

// spawnRows fills still-empty spawn-row cells of nxt, in ascending index.
func (p *priority) spawnRows(nxt *lattice.Lattice, tick uint32, c *Counts) {
	n := nxt.N
	for z := 0; z < n; z++ {
		for _, row := range [2]struct {
			y    int
			kind lattice.Kind
		}{{0, p.top}, {n - 1, p.bottom}} {
			for x := 0; x < n; x++ {
				i := nxt.Index(x, row.y, z)
				if nxt.At(i).Occupied() {
					continue
				}
				roll := lattice.SpawnRoll(x, z, tick)
				if !lattice.Spawns(roll, p.params.SpawnRate) {
					continue
				}
				nxt.Put(i, lattice.Cell{Kind: row.kind, Life: int32(p.params.Lifespan), ID: roll})
				c.spawned(row.kind)
				c.live(row.kind)
			}
		}
	}
}

// biasedTarget steps SpeciesA toward +x and SpeciesB toward -x. The hash
// mixes the particle id with its current index, so ids are not carried as a
// per-particle random stream across ticks.
func biasedTarget(l *lattice.Lattice, i int, c lattice.Cell, tick uint32) int {
	x, y, z := l.Coords(i)
	h := lattice.Hash(int(c.ID), i, 0, tick)
	dx := 1
	if c.Kind == lattice.SpeciesB {
		dx = -1
	}
	dy, dz := 0, 0
	if h%100 < JitterChance {
		dy = int((h>>8)%3) - 1
		dz = int((h>>16)%3) - 1
	}
	return l.Index(l.WrapAxis(x+dx), l.ClampAxis(y+dy), l.WrapAxis(z+dz))
}
