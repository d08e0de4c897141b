package mirror

import (
	"context"
	"fmt"

	"mirror-ca/internal/core"
	"mirror-ca/internal/lattice"
	"mirror-ca/pkg/rng"
)

// engine advances nxt from cur for one tick and reports the tick's counts.
// Implementations only read cur and only write nxt.
type engine interface {
	step(cur, nxt *lattice.Lattice, tick uint32) Counts
}

// View selects the cross-section exposed through Cells.
type View struct {
	Axis  lattice.Axis
	Index int
}

// World owns the double-buffered lattice, the active strategy and the
// population counters. It is not safe for concurrent use; callers must not
// read snapshots while a step is running.
type World struct {
	cfg Config
	n   int

	cur *lattice.Lattice
	nxt *lattice.Lattice

	eng    engine
	top    lattice.Kind
	bottom lattice.Kind

	tick  uint32
	stats Stats

	view    View
	plane   lattice.Plane
	display *core.ByteGrid
}

// New returns a symmetric-mode world of side n using defaults.
func New(n int) (*World, error) {
	cfg := DefaultConfig()
	cfg.N = n
	return NewWithConfig(cfg)
}

// NewWithConfig validates cfg, allocates both lattice buffers and resets the
// world with cfg.Seed. On error no world is returned.
func NewWithConfig(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cur, nxt, err := allocate(cfg.N)
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg:     cfg,
		n:       cfg.N,
		cur:     cur,
		nxt:     nxt,
		top:     lattice.SpeciesA,
		bottom:  lattice.SpeciesB,
		view:    View{Axis: lattice.AxisZ, Index: cfg.N / 2},
		display: core.NewByteGrid(cfg.N, cfg.N),
	}
	if cfg.Mirrored {
		w.top, w.bottom = w.bottom, w.top
	}
	switch cfg.Mode {
	case ModePriority:
		w.eng = newPriority(cfg, w.top, w.bottom)
	default:
		w.eng = newSymmetric(cfg, w.top, w.bottom)
	}
	w.Reset(cfg.Seed)
	return w, nil
}

// allocate builds both buffers or neither. Validate caps the cell count, so
// the recover only turns a make panic on an impossible length into
// ErrAllocation; running out of memory is a fatal runtime error and is not
// caught here.
func allocate(n int) (cur, nxt *lattice.Lattice, err error) {
	defer func() {
		if r := recover(); r != nil {
			cur, nxt = nil, nil
			err = fmt.Errorf("%w: n=%d: %v", ErrAllocation, n, r)
		}
	}()
	cur = lattice.New(n)
	nxt = lattice.New(n)
	return cur, nxt, nil
}

// Name returns the simulation identifier.
func (w *World) Name() string {
	if w.cfg.Mode == ModePriority {
		return "priority"
	}
	return "mirror"
}

// Size reports the dimensions of the view plane.
func (w *World) Size() core.Size { return core.Size{W: w.n, H: w.n} }

// Config returns the configuration the world was built with.
func (w *World) Config() Config { return w.cfg }

// Tick returns the tick value the next Step will use.
func (w *World) Tick() uint32 { return w.tick }

// SpawnKinds reports which species spawns on the y=0 row and which on y=N-1.
func (w *World) SpawnKinds() (top, bottom lattice.Kind) { return w.top, w.bottom }

// Reset restores the initial state for seed; a zero seed uses the config seed.
// Both buffers, the tick counter and every counter are cleared.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.cur.Clear()
	w.nxt.Clear()
	w.tick = 0
	w.stats = Stats{}
	if w.cfg.Mode == ModePriority {
		w.seedPopulation(effective)
	}
	w.stats.LiveA = w.cur.Count(lattice.SpeciesA)
	w.stats.LiveB = w.cur.Count(lattice.SpeciesB)
	w.rebuildDisplay()
}

// seedPopulation scatters particles of both species with random remaining life.
func (w *World) seedPopulation(seed int64) {
	r := rng.New(seed)
	cells := w.cur.Cells()
	for i := range cells {
		if !r.Chance(w.cfg.Params.InitialDensity) {
			continue
		}
		kind := lattice.SpeciesA
		if r.Bool() {
			kind = lattice.SpeciesB
		}
		cells[i] = lattice.Cell{
			Kind: kind,
			Life: int32(1 + r.IntN(w.cfg.Params.Lifespan)),
			ID:   r.Uint32(),
		}
	}
}

// Step advances one tick using the internal tick counter.
func (w *World) Step() {
	w.StepTick(w.tick)
}

// StepTick advances the world by one tick computed with the given tick value
// and returns the published stats. Buffers swap and stats publish together
// after the whole lattice has been written.
func (w *World) StepTick(tick uint32) Stats {
	counts := w.eng.step(w.cur, w.nxt, tick)
	w.cur, w.nxt = w.nxt, w.cur
	w.stats = w.stats.advance(tick, counts)
	w.tick = tick + 1
	w.rebuildDisplay()
	return w.stats
}

// StepContext is StepTick that refuses to start once ctx is done. A tick that
// starts always runs to completion.
func (w *World) StepContext(ctx context.Context, tick uint32) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return w.stats, err
	}
	return w.StepTick(tick), nil
}

// Stats returns the counters of the last completed tick.
func (w *World) Stats() Stats { return w.stats }

// Slice copies the current lattice cross-section perpendicular to axis.
func (w *World) Slice(axis lattice.Axis, index int) (lattice.Plane, error) {
	return w.cur.Slice(axis, index)
}

// Cell returns a copy of the current cell at (x, y, z).
func (w *World) Cell(x, y, z int) lattice.Cell { return w.cur.Get(x, y, z) }

// Population counts the current cells of kind k.
func (w *World) Population(k lattice.Kind) int { return w.cur.Count(k) }

// View returns the cross-section exposed through Cells.
func (w *World) View() View { return w.view }

// SetView selects the cross-section exposed through Cells.
func (w *World) SetView(axis lattice.Axis, index int) error {
	if axis != lattice.AxisY {
		index = w.cur.WrapAxis(index)
	}
	if err := w.cur.SliceInto(&w.plane, axis, index); err != nil {
		return err
	}
	w.view = View{Axis: axis, Index: w.plane.Index}
	w.encodePlane()
	return nil
}

// ShiftView moves the view index by delta, wrapping on every axis.
func (w *World) ShiftView(delta int) {
	idx := ((w.view.Index+delta)%w.n + w.n) % w.n
	_ = w.SetView(w.view.Axis, idx)
}

// CycleAxis switches the view to the next axis and centers it.
func (w *World) CycleAxis() {
	next := (w.view.Axis + 1) % 3
	_ = w.SetView(next, w.n/2)
}

// Cells exposes the palette-indexed display buffer for the current view.
func (w *World) Cells() []uint8 { return w.display.Cells() }

// Plane returns the last rendered view plane. The slice is reused on the next
// step; copy it to keep it.
func (w *World) Plane() lattice.Plane { return w.plane }

func (w *World) rebuildDisplay() {
	if err := w.cur.SliceInto(&w.plane, w.view.Axis, w.view.Index); err != nil {
		w.view = View{Axis: lattice.AxisZ, Index: w.n / 2}
		_ = w.cur.SliceInto(&w.plane, w.view.Axis, w.view.Index)
	}
	w.encodePlane()
}

func (w *World) encodePlane() {
	cells := w.display.Cells()
	for i, c := range w.plane.Cells {
		cells[i] = encodeDisplayValue(c)
	}
}

func newSim(cfg map[string]string, mode Mode) (core.Sim, error) {
	c := FromMap(cfg)
	c.Mode = mode
	w, err := NewWithConfig(c)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func init() {
	core.Register("mirror", func(cfg map[string]string) (core.Sim, error) {
		return newSim(cfg, ModeSymmetric)
	})
	core.Register("priority", func(cfg map[string]string) (core.Sim, error) {
		return newSim(cfg, ModePriority)
	})
}
