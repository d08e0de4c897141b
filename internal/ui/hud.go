//go:build ebiten

package ui

import (
	"image/color"

	"mirror-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	panelPadding = 12
	lineHeight   = 16
	groupGap     = 8
)

// HUD renders the stats and parameter panel to the right of the view.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	title      string
	lines      []Line
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width <= 0 {
		return nil
	}
	return &HUD{sim: sim, width: width, title: buildTitle(sim)}
}

// Update refreshes the panel rows from status and the simulation parameters.
func (h *HUD) Update(status []string) {
	if h == nil {
		return
	}
	var snap core.ParameterSnapshot
	if provider, ok := h.sim.(core.ParameterProvider); ok {
		snap = provider.Parameters()
	}
	h.lines = PanelLines(h.title, status, snap)
}

// Draw paints the HUD panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawLines()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawLines() {
	face := basicfont.Face7x13
	y := panelPadding + 10
	for _, l := range h.lines {
		if l.Kind == LineGroup {
			y += groupGap
		}
		if y > h.lastHeight-panelPadding {
			return
		}
		text.Draw(h.panel, l.Text, face, panelPadding, y, lineColor(l.Kind))
		if l.Value != "" {
			w := text.BoundString(face, l.Value).Dx()
			text.Draw(h.panel, l.Value, face, h.width-panelPadding-w, y, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		}
		y += lineHeight
	}
}

func lineColor(k LineKind) color.RGBA {
	switch k {
	case LineTitle:
		return color.RGBA{R: 200, G: 200, B: 210, A: 255}
	case LineStatus:
		return color.RGBA{R: 240, G: 210, B: 120, A: 255}
	case LineGroup:
		return color.RGBA{R: 140, G: 180, B: 230, A: 255}
	case LineSummary:
		return color.RGBA{R: 160, G: 160, B: 170, A: 255}
	default:
		return color.RGBA{R: 220, G: 220, B: 230, A: 255}
	}
}
