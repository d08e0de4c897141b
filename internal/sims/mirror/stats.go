package mirror

import (
	"fmt"

	"mirror-ca/internal/lattice"
)

// Counts are the per-tick tallies produced by one step. Partial counts from
// independent slabs combine with Add in any order.
type Counts struct {
	LiveA    int `json:"live_a"`
	LiveB    int `json:"live_b"`
	SpawnedA int `json:"spawned_a"`
	SpawnedB int `json:"spawned_b"`

	Annihilations int `json:"annihilations"`
	DestroyedA    int `json:"destroyed_a"`
	DestroyedB    int `json:"destroyed_b"`
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		LiveA:         c.LiveA + o.LiveA,
		LiveB:         c.LiveB + o.LiveB,
		SpawnedA:      c.SpawnedA + o.SpawnedA,
		SpawnedB:      c.SpawnedB + o.SpawnedB,
		Annihilations: c.Annihilations + o.Annihilations,
		DestroyedA:    c.DestroyedA + o.DestroyedA,
		DestroyedB:    c.DestroyedB + o.DestroyedB,
	}
}

func (c *Counts) live(k lattice.Kind) {
	switch k {
	case lattice.SpeciesA:
		c.LiveA++
	case lattice.SpeciesB:
		c.LiveB++
	}
}

func (c *Counts) spawned(k lattice.Kind) {
	switch k {
	case lattice.SpeciesA:
		c.SpawnedA++
	case lattice.SpeciesB:
		c.SpawnedB++
	}
}

func (c *Counts) destroyed(k lattice.Kind) {
	switch k {
	case lattice.SpeciesA:
		c.DestroyedA++
	case lattice.SpeciesB:
		c.DestroyedB++
	}
}

// Stats is the population snapshot published after each completed tick.
type Stats struct {
	// Tick is the tick value the last step ran with.
	Tick uint32 `json:"tick"`
	// Ticks counts completed steps since the last reset.
	Ticks uint64 `json:"ticks"`

	Counts

	TotalSpawnedA      int64 `json:"total_spawned_a"`
	TotalSpawnedB      int64 `json:"total_spawned_b"`
	TotalAnnihilations int64 `json:"total_annihilations"`
	TotalDestroyedA    int64 `json:"total_destroyed_a"`
	TotalDestroyedB    int64 `json:"total_destroyed_b"`
}

// advance folds one completed tick into the cumulative counters.
func (s Stats) advance(tick uint32, c Counts) Stats {
	s.Tick = tick
	s.Ticks++
	s.Counts = c
	s.TotalSpawnedA += int64(c.SpawnedA)
	s.TotalSpawnedB += int64(c.SpawnedB)
	s.TotalAnnihilations += int64(c.Annihilations)
	s.TotalDestroyedA += int64(c.DestroyedA)
	s.TotalDestroyedB += int64(c.DestroyedB)
	return s
}

// Live returns the live count for species k.
func (s Stats) Live(k lattice.Kind) int {
	switch k {
	case lattice.SpeciesA:
		return s.LiveA
	case lattice.SpeciesB:
		return s.LiveB
	}
	return 0
}

// TotalSpawned returns the cumulative spawn count for species k.
func (s Stats) TotalSpawned(k lattice.Kind) int64 {
	switch k {
	case lattice.SpeciesA:
		return s.TotalSpawnedA
	case lattice.SpeciesB:
		return s.TotalSpawnedB
	}
	return 0
}

func (s Stats) String() string {
	return fmt.Sprintf("POP: A %d vs B %d | SPAWN: A %d vs B %d", s.LiveA, s.LiveB, s.TotalSpawnedA, s.TotalSpawnedB)
}
