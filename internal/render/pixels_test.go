package render

import (
	"image/color"
	"testing"
)

func TestFillPaletteRGBA(t *testing.T) {
	palette := []color.RGBA{{A: 255}, {R: 10, G: 20, B: 30, A: 255}}
	cells := []uint8{0, 1, 7}
	buf := make([]byte, 4*len(cells))
	fillPaletteRGBA(buf, cells, palette)

	want := []byte{0, 0, 0, 255, 10, 20, 30, 255, 10, 20, 30, 255}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (out-of-range values clamp to the last entry)", i, buf[i], want[i])
		}
	}

	fillPaletteRGBA(buf, cells, nil)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("empty palette should clear, byte %d = %d", i, b)
		}
	}
}

func TestPlaneImageScales(t *testing.T) {
	palette := []color.RGBA{{A: 255}, {R: 200, A: 255}}
	cells := []uint8{1, 0, 0, 1}
	img := PlaneImage(cells, 2, 2, palette, 3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
	for _, p := range [][2]int{{0, 0}, {2, 2}, {3, 3}, {5, 5}} {
		if got := img.RGBAAt(p[0], p[1]); got.R != 200 {
			t.Fatalf("pixel %v should be lit, got %+v", p, got)
		}
	}
	for _, p := range [][2]int{{3, 0}, {5, 2}, {0, 3}, {2, 5}} {
		if got := img.RGBAAt(p[0], p[1]); got.R != 0 || got.A != 255 {
			t.Fatalf("pixel %v should be background, got %+v", p, got)
		}
	}

	if img := PlaneImage(cells[:3], 2, 2, palette, 1); img.RGBAAt(0, 0).A != 0 {
		t.Fatal("mismatched cell count should leave the image blank")
	}
}
