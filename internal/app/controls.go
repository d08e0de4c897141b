package app

import (
	"fmt"

	"mirror-ca/internal/lattice"
	"mirror-ca/internal/sims/mirror"
)

// ScanEvery is the number of ticks between automatic slice advances.
const ScanEvery = 5

// Controller holds the viewer state that does not depend on a window:
// pausing, single steps, resets and slice navigation.
type Controller struct {
	world *mirror.World

	paused   bool
	stepOnce bool
	autoScan bool
	seed     int64
}

// NewController drives w. A zero seed resets with the world's config seed.
func NewController(w *mirror.World, seed int64, autoScan bool) *Controller {
	return &Controller{world: w, seed: seed, autoScan: autoScan}
}

func (c *Controller) World() *mirror.World { return c.world }
func (c *Controller) Paused() bool         { return c.paused }
func (c *Controller) AutoScan() bool       { return c.autoScan }
func (c *Controller) Seed() int64          { return c.seed }

func (c *Controller) TogglePause()    { c.paused = !c.paused }
func (c *Controller) Resume()         { c.paused = false }
func (c *Controller) StepOnce()       { c.stepOnce = true }
func (c *Controller) ToggleAutoScan() { c.autoScan = !c.autoScan }

// Reset restores the initial lattice for the current seed.
func (c *Controller) Reset() {
	c.world.Reset(c.seed)
	c.stepOnce = false
}

// Reseed switches to seed and resets.
func (c *Controller) Reseed(seed int64) {
	c.seed = seed
	c.Reset()
}

// ShiftView moves the view slice by delta and stops auto-scan.
func (c *Controller) ShiftView(delta int) {
	c.autoScan = false
	c.world.ShiftView(delta)
}

// CycleAxis switches the view axis.
func (c *Controller) CycleAxis() { c.world.CycleAxis() }

// Advance runs at most one tick and reports whether it did. Auto-scan moves
// the slice after every ScanEvery completed ticks.
func (c *Controller) Advance() bool {
	if c.paused && !c.stepOnce {
		return false
	}
	c.stepOnce = false
	c.world.Step()
	if c.autoScan && c.world.Stats().Ticks%ScanEvery == 0 {
		c.world.ShiftView(1)
	}
	return true
}

// Status is the one-line summary shown in the title bar and logs.
func (c *Controller) Status() string {
	v := c.world.View()
	return fmt.Sprintf("%s:%3d | %s", axisLabel(v.Axis), v.Index, c.world.Stats())
}

// Lines breaks the stats into HUD rows.
func (c *Controller) Lines() []string {
	s := c.world.Stats()
	v := c.world.View()
	state := "running"
	if c.paused {
		state = "paused"
	}
	scan := "off"
	if c.autoScan {
		scan = "on"
	}
	return []string{
		fmt.Sprintf("tick %d (%s)", s.Ticks, state),
		fmt.Sprintf("view %s=%d  scan %s", v.Axis, v.Index, scan),
		fmt.Sprintf("live    A %6d  B %6d", s.LiveA, s.LiveB),
		fmt.Sprintf("spawned A %6d  B %6d", s.TotalSpawnedA, s.TotalSpawnedB),
		fmt.Sprintf("annihilations %d (+%d)", s.TotalAnnihilations, s.Annihilations),
		fmt.Sprintf("destroyed A %d  B %d", s.TotalDestroyedA, s.TotalDestroyedB),
	}
}

func axisLabel(a lattice.Axis) string {
	switch a {
	case lattice.AxisX:
		return "X"
	case lattice.AxisY:
		return "Y"
	default:
		return "Z"
	}
}
