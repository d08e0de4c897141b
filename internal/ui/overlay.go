//go:build ebiten

package ui

import (
	"image/color"

	"mirror-ca/internal/core"
	"mirror-ca/internal/lattice"
	"mirror-ca/internal/sims/mirror"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type viewProvider interface {
	View() mirror.View
	SpawnKinds() (top, bottom lattice.Kind)
}

// Overlay marks the spawn rows and the slice position on top of the view.
type Overlay struct {
	sim       core.Sim
	scale     int
	showRows  bool
	showGauge bool
	pixel     *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showRows: true, showGauge: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the overlay layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showRows = !o.showRows
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showGauge = !o.showGauge
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(viewProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	scale := float64(o.scale)
	if scale <= 0 {
		scale = 1
	}
	view := provider.View()
	width := float64(size.W) * scale
	height := float64(size.H) * scale

	// The y axis runs down the plane for x and z views.
	if o.showRows && view.Axis != lattice.AxisY {
		top, bottom := provider.SpawnKinds()
		o.rect(screen, 0, 0, width, 1, kindTint(top))
		o.rect(screen, 0, height-1, width, 1, kindTint(bottom))
	}
	if o.showGauge && size.W > 0 {
		pos := (float64(view.Index) + 0.5) / float64(size.W) * width
		o.rect(screen, pos-1, height-4, 3, 4, color.RGBA{R: 255, G: 255, B: 255, A: 200})
	}
}

func (o *Overlay) rect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func kindTint(k lattice.Kind) color.RGBA {
	val := mirror.Palette()[int(k)<<6|0x3f]
	val.A = 160
	return val
}
