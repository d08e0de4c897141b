package mirror

import (
	"image/color"

	"mirror-ca/internal/lattice"
)

const (
	displayKindShift = 6
	displayLevelMask = 0x3f
)

var mirrorPalette = buildMirrorPalette()

// Palette exposes the color palette used for rendering the view plane.
func (w *World) Palette() []color.RGBA {
	return mirrorPalette
}

// Palette returns the shared display palette without a world.
func Palette() []color.RGBA { return mirrorPalette }

func buildMirrorPalette() []color.RGBA {
	palette := make([]color.RGBA, 256)
	for i := range palette {
		kind := lattice.Kind(i >> displayKindShift)
		level := uint8(i & displayLevelMask)
		palette[i] = paletteColorFor(kind, level)
	}
	return palette
}

func paletteColorFor(kind lattice.Kind, level uint8) color.RGBA {
	val := level<<2 | level>>4
	switch kind {
	case lattice.SpeciesA:
		return color.RGBA{R: val, G: uint8(float64(val) * 0.8), B: 0, A: 255}
	case lattice.SpeciesB:
		return color.RGBA{R: 0, G: uint8(float64(val) * 0.8), B: val, A: 255}
	case lattice.Annihilation:
		return color.RGBA{R: val, G: val, B: val, A: 255}
	default:
		return color.RGBA{A: 255}
	}
}

// encodeDisplayValue packs the kind into the top two bits and a brightness
// level into the low six. Particles glow at twice their remaining life,
// annihilation markers at their life, both saturating at 255.
func encodeDisplayValue(c lattice.Cell) uint8 {
	var intensity int32
	switch c.Kind {
	case lattice.SpeciesA, lattice.SpeciesB:
		intensity = c.Life * 2
	case lattice.Annihilation:
		intensity = c.Life
	default:
		return 0
	}
	if intensity > 255 {
		intensity = 255
	}
	if intensity < 0 {
		intensity = 0
	}
	return uint8(c.Kind)<<displayKindShift | uint8(intensity>>2)&displayLevelMask
}

// DecodeDisplayValue splits a display byte back into kind and level.
func DecodeDisplayValue(v uint8) (lattice.Kind, uint8) {
	return lattice.Kind(v >> displayKindShift), v & displayLevelMask
}
