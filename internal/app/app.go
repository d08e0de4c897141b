//go:build ebiten

package app

import (
	"time"

	"mirror-ca/internal/render"
	"mirror-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a Controller to the ebiten.Game interface.
type Game struct {
	ctl     *Controller
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay

	scale    int
	hudWidth int
}

// New constructs a Game for the controller's world.
func New(ctl *Controller, scale, hudWidth int) *Game {
	w := ctl.World()
	size := w.Size()
	if scale <= 0 {
		scale = 1
	}
	return &Game{
		ctl:      ctl,
		painter:  render.NewGridPainter(size.W, size.H),
		hud:      ui.NewHUD(w, hudWidth),
		overlay:  ui.NewOverlay(w, scale),
		scale:    scale,
		hudWidth: hudWidth,
	}
}

// Update handles per-frame input and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.ctl.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.ctl.Resume()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.ctl.StepOnce()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctl.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.ctl.Reseed(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.ctl.ToggleAutoScan()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.ctl.CycleAxis()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) || inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.ctl.ShiftView(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) || inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.ctl.ShiftView(-1)
	}

	g.overlay.Update()
	if g.ctl.Advance() {
		ebiten.SetWindowTitle("mirror-ca: " + g.ctl.Status())
	}
	g.hud.Update(g.ctl.Lines())
	return nil
}

// Draw renders the current view slice, the overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	w := g.ctl.World()
	g.painter.Blit(screen, w.Cells(), w.Palette(), g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, w.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.ctl.World().Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
