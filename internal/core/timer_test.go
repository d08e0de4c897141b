package core

import (
	"testing"
	"time"
)

func TestFixedStepPacesTicks(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := newFixedStep(10, func() time.Time { return clock })

	if !fs.ShouldStep() {
		t.Fatal("first call should step immediately")
	}
	if fs.ShouldStep() {
		t.Fatal("no time elapsed, expected no step")
	}
	clock = clock.Add(50 * time.Millisecond)
	if fs.ShouldStep() {
		t.Fatal("half an interval should not step")
	}
	clock = clock.Add(60 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("a full interval elapsed, expected a step")
	}
	if fs.Interval() != 100*time.Millisecond {
		t.Fatalf("unexpected interval %s", fs.Interval())
	}
}

func TestFixedStepDefaultsInvalidRate(t *testing.T) {
	fs := NewFixedStep(0)
	if fs.Interval() != time.Second/60 {
		t.Fatalf("expected 60 TPS fallback, got %s", fs.Interval())
	}
}

func TestByteGrid(t *testing.T) {
	g := NewByteGrid(3, 2)
	if g.W != 3 || g.H != 2 || len(g.Cells()) != 6 {
		t.Fatalf("unexpected grid %dx%d with %d cells", g.W, g.H, len(g.Cells()))
	}
	g.Cells()[4] = 7
	if g.Cells()[4] != 7 {
		t.Fatal("Cells must expose the backing slice")
	}
	if e := NewByteGrid(0, -2); e.W != 1 || e.H != 1 {
		t.Fatalf("non-positive dimensions should clamp to 1, got %dx%d", e.W, e.H)
	}
}

func TestFixedStepPendingCaps(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := newFixedStep(100, func() time.Time { return clock })
	fs.ShouldStep()
	clock = clock.Add(time.Second)
	if got := fs.Pending(5); got != 5 {
		t.Fatalf("expected the backlog to be capped at 5, got %d", got)
	}
}
