package main

import (
	"math"
	"testing"

	"mirror-ca/internal/sims/mirror"
)

func TestSweepCoversEverySet(t *testing.T) {
	base := mirror.DefaultConfig()
	base.N = 9
	base.Workers = 1
	sets := buildSets([]int{50}, []int{30})
	if len(sets) != 4 {
		t.Fatalf("expected 4 sets, got %d", len(sets))
	}
	results := sweep(base, sets, 30, 3)
	if len(results) != len(sets) {
		t.Fatalf("expected %d results, got %d", len(sets), len(results))
	}
	for _, r := range results {
		if r.err != nil {
			t.Fatalf("%s failed: %v", r.params, r.err)
		}
		if r.final.Ticks != 30 || r.peakLive == 0 {
			t.Fatalf("%s: unexpected result %+v", r.params, r.final)
		}
	}
}

func TestMirroredSymmetricScenarioFlipsImbalance(t *testing.T) {
	base := mirror.DefaultConfig()
	base.N = 11
	base.Workers = 1
	a := runScenario(base, paramSet{mode: mirror.ModeSymmetric, spawnRate: 80, lifespan: 40}, 60)
	b := runScenario(base, paramSet{mode: mirror.ModeSymmetric, spawnRate: 80, lifespan: 40, mirrored: true}, 60)
	if math.Abs(a.imbalance+b.imbalance) > 1e-9 {
		t.Fatalf("mirroring should negate the imbalance: %v vs %v", a.imbalance, b.imbalance)
	}
}
