package runner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mirror-ca/internal/core"
	"mirror-ca/internal/persistence/runindex"
	"mirror-ca/internal/persistence/statlog"
	"mirror-ca/internal/sims/mirror"
	"mirror-ca/internal/transport/observer"
)

func newWorld(t *testing.T, mode mirror.Mode) *mirror.World {
	t.Helper()
	cfg := mirror.DefaultConfig()
	cfg.N = 11
	cfg.Mode = mode
	cfg.Params.SpawnRate = 150
	w, err := mirror.NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestRunFeedsEverySink(t *testing.T) {
	dir := t.TempDir()
	trace, err := statlog.Create(filepath.Join(dir, "trace.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	idx, err := runindex.Open(filepath.Join(dir, "runs.db"), nil)
	if err != nil {
		t.Fatal(err)
	}

	r := &Runner{
		World:       newWorld(t, mirror.ModePriority),
		RunID:       "t1",
		Ticks:       40,
		Trace:       trace,
		Index:       idx,
		SampleEvery: 10,
		Hub:         observer.NewHub(),
		AutoScan:    true,
	}
	final, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if final.Ticks != 40 {
		t.Fatalf("expected 40 ticks, got %d", final.Ticks)
	}
	if err := trace.Close(); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := statlog.ReadAll(trace.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 40 || records[39].Stats != final {
		t.Fatalf("trace should hold every tick, got %d records", len(records))
	}

	idx, err = runindex.Open(filepath.Join(dir, "runs.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	samples, err := idx.Samples(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 4 || samples[3].Tick != 40 {
		t.Fatalf("expected samples every 10 ticks, got %+v", samples)
	}
	runs, err := idx.Runs(context.Background(), mirror.ModePriority)
	if err != nil || len(runs) != 1 || runs[0].Final.Ticks != 40 {
		t.Fatalf("run row missing or unfinished: %+v (%v)", runs, err)
	}
	if r.World.View().Index != (11/2+8)%11 {
		t.Fatalf("auto-scan should have moved the slice 8 times, view %+v", r.World.View())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		World: newWorld(t, mirror.ModeSymmetric),
		RunID: "paced",
		Timer: core.NewFixedStep(200),
	}
	done := make(chan mirror.Stats, 1)
	go func() {
		s, _ := r.Run(ctx)
		done <- s
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case s := <-done:
		if s.Ticks == 0 {
			t.Fatal("paced run should have completed some ticks before cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunWithoutWorld(t *testing.T) {
	if _, err := (&Runner{}).Run(context.Background()); err == nil {
		t.Fatal("expected an error without a world")
	}
}
