package lattice

import (
	"errors"
	"math/bits"
	"strings"
	"testing"
)

func TestHashIsPure(t *testing.T) {
	for a := -3; a < 3; a++ {
		for tick := uint32(0); tick < 50; tick++ {
			first := Hash(a, 7, a*11, tick)
			for i := 0; i < 3; i++ {
				if got := Hash(a, 7, a*11, tick); got != first {
					t.Fatalf("Hash(%d,7,%d,%d) changed between calls: %d vs %d", a, a*11, tick, first, got)
				}
			}
		}
	}
}

func TestHashAvalanche(t *testing.T) {
	const samples = 2000
	flipped := 0
	trials := 0
	for i := 0; i < samples; i++ {
		a, c, tick := i*31, i*17+3, uint32(i*7919)
		base := Hash(a, 0, c, tick)
		for bit := 0; bit < 16; bit++ {
			flipped += bits.OnesCount32(base ^ Hash(a^(1<<bit), 0, c, tick))
			flipped += bits.OnesCount32(base ^ Hash(a, 0, c, tick^(1<<bit)))
			trials += 2
		}
	}
	mean := float64(flipped) / float64(trials)
	if mean < 14 || mean > 18 {
		t.Fatalf("expected roughly half of the output bits to flip, mean %.2f", mean)
	}
}

func TestDriftBuckets(t *testing.T) {
	counts := map[int]int{}
	const ticks = 20000
	for tick := uint32(0); tick < ticks; tick++ {
		d := Drift(12345, tick)
		if d < -1 || d > 1 {
			t.Fatalf("drift %d outside {-1,0,1}", d)
		}
		counts[d]++
	}
	check := func(dir int, want float64) {
		got := float64(counts[dir]) / ticks
		if got < want-0.03 || got > want+0.03 {
			t.Fatalf("drift %d frequency %.3f, expected about %.2f", dir, got, want)
		}
	}
	check(0, 0.40)
	check(1, 0.30)
	check(-1, 0.30)
}

func TestSpawnRollSharedAcrossRows(t *testing.T) {
	// Both spawn rows hash with the same relative y, so the roll only depends on x, z, tick.
	if SpawnRoll(4, 9, 77) != Hash(4, 0, 9, 77) {
		t.Fatal("spawn roll must hash the row with a zero relative coordinate")
	}
	if !Spawns(999, 1000) || Spawns(0, 0) {
		t.Fatal("spawn threshold compares roll%1000 against the per-mille rate")
	}
}

func TestWrapAxis(t *testing.T) {
	l := New(7)
	for v := -50; v <= 50; v++ {
		w := l.WrapAxis(v)
		if w < 0 || w >= l.N {
			t.Fatalf("WrapAxis(%d)=%d outside [0,%d)", v, w, l.N)
		}
		if l.WrapAxis(w) != w {
			t.Fatalf("WrapAxis not idempotent at %d", v)
		}
		if (v-w)%l.N != 0 {
			t.Fatalf("WrapAxis(%d)=%d not congruent mod %d", v, w, l.N)
		}
	}
	if l.WrapAxis(-1) != 6 || l.WrapAxis(7) != 0 {
		t.Fatal("single-step wrap should map -1 to N-1 and N to 0")
	}
}

func TestIndexRoundTripAndWrappedAccess(t *testing.T) {
	l := New(5)
	i := l.Index(1, 2, 3)
	if i != 1+2*5+3*25 {
		t.Fatalf("unexpected linear index %d", i)
	}
	x, y, z := l.Coords(i)
	if x != 1 || y != 2 || z != 3 {
		t.Fatalf("Coords(%d) = (%d,%d,%d)", i, x, y, z)
	}

	c := Cell{Kind: SpeciesA, Life: 3, ID: 9}
	l.Set(-1, 0, 5, c)
	if got := l.Get(4, 0, 0); got != c {
		t.Fatalf("wrapped write not visible at (4,0,0): %+v", got)
	}
	if l.Count(SpeciesA) != 1 {
		t.Fatalf("expected a single species A cell, got %d", l.Count(SpeciesA))
	}
	l.Clear()
	if l.Count(Empty) != l.Len() {
		t.Fatal("Clear should empty every cell")
	}
}

func TestCellAged(t *testing.T) {
	c := Cell{Kind: SpeciesB, Life: 2, ID: 4}
	if got := c.Aged(1); got.Kind != SpeciesB || got.Life != 1 {
		t.Fatalf("expected one life left, got %+v", got)
	}
	if got := c.Aged(2); got != (Cell{}) {
		t.Fatalf("a cell reaching zero life must be empty, got %+v", got)
	}
	if got := (Cell{Kind: Annihilation, Life: 5}).Aged(10); got.Occupied() {
		t.Fatalf("overshooting decay must clear the cell, got %+v", got)
	}
}

func TestSliceAxes(t *testing.T) {
	l := New(3)
	for i := range l.Cells() {
		l.Put(i, Cell{Kind: SpeciesA, Life: 1, ID: uint32(i)})
	}

	z, err := l.Slice(AxisZ, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := z.At(2, 1).ID; got != uint32(l.Index(2, 1, 1)) {
		t.Fatalf("z slice (2,1) read id %d", got)
	}

	x, err := l.Slice(AxisX, -1)
	if err != nil {
		t.Fatal(err)
	}
	if x.Index != 2 {
		t.Fatalf("x slice index should wrap to 2, got %d", x.Index)
	}
	if got := x.At(1, 2).ID; got != uint32(l.Index(2, 2, 1)) {
		t.Fatalf("x slice (z=1,y=2) read id %d", got)
	}

	y, err := l.Slice(AxisY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := y.At(1, 2).ID; got != uint32(l.Index(1, 0, 2)) {
		t.Fatalf("y slice (x=1,z=2) read id %d", got)
	}

	if _, err := l.Slice(AxisY, 3); !errors.Is(err, ErrSliceRange) {
		t.Fatalf("expected ErrSliceRange for y=3, got %v", err)
	}
	if _, err := l.Slice(Axis(9), 0); !errors.Is(err, ErrBadAxis) {
		t.Fatalf("expected ErrBadAxis, got %v", err)
	}
}

func TestSliceIsCopy(t *testing.T) {
	l := New(3)
	p, err := l.Slice(AxisZ, 0)
	if err != nil {
		t.Fatal(err)
	}
	p.Cells[0] = Cell{Kind: SpeciesB, Life: 1}
	if l.At(0).Occupied() {
		t.Fatal("mutating a plane must not write through to the lattice")
	}

	l.Put(l.Index(1, 1, 2), Cell{Kind: SpeciesB, Life: 4})
	if err := l.SliceInto(&p, AxisZ, 2); err != nil {
		t.Fatal(err)
	}
	if p.Count(SpeciesB) != 1 || p.At(1, 1).Life != 4 {
		t.Fatalf("SliceInto did not refresh the plane: %+v", p.At(1, 1))
	}
}

func TestParseAxis(t *testing.T) {
	for s, want := range map[string]Axis{"x": AxisX, "Y": AxisY, "z": AxisZ} {
		got, err := ParseAxis(s)
		if err != nil || got != want {
			t.Fatalf("ParseAxis(%q) = %v, %v", s, got, err)
		}
		if got.String() != strings.ToLower(s) {
			t.Fatalf("%v should print as %q", got, strings.ToLower(s))
		}
	}
	if _, err := ParseAxis("w"); !errors.Is(err, ErrBadAxis) {
		t.Fatalf("expected ErrBadAxis, got %v", err)
	}
}
