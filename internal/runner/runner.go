// Package runner drives a world headlessly and hands every completed tick to
// the optional sinks: the stats trace, the run index and the observer hub.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mirror-ca/internal/core"
	"mirror-ca/internal/logging"
	"mirror-ca/internal/persistence/runindex"
	"mirror-ca/internal/persistence/statlog"
	"mirror-ca/internal/sims/mirror"
	"mirror-ca/internal/transport/observer"
)

const (
	// maxCatchUp bounds how many ticks a paced run executes back to back after a stall.
	maxCatchUp = 8
	scanEvery  = 5
)

// Runner steps one world. Zero-valued sinks are skipped.
type Runner struct {
	World *mirror.World
	RunID string

	// Ticks stops the run after that many completed ticks; zero runs until
	// the context is done.
	Ticks uint64
	// Timer paces the run; nil runs as fast as possible.
	Timer *core.FixedStep

	Trace *statlog.Writer
	Index *runindex.Index
	// SampleEvery sends one index sample per that many ticks.
	SampleEvery uint64
	Hub         *observer.Hub
	// AutoScan advances the view slice like the viewer does.
	AutoScan bool

	Log      logging.Logger
	LogEvery uint64
}

// Run steps until the tick budget is spent or ctx is done. A tick that starts
// always completes and is delivered to every sink.
func (r *Runner) Run(ctx context.Context) (mirror.Stats, error) {
	if r.World == nil {
		return mirror.Stats{}, errors.New("runner: no world")
	}
	log := logging.OrNoOp(r.Log)
	w := r.World
	cfg := w.Config()

	if r.Index != nil {
		run := runindex.RunFromConfig(r.RunID, cfg)
		if err := r.Index.StartRun(ctx, run); err != nil {
			return w.Stats(), fmt.Errorf("runner: index start: %w", err)
		}
	}
	if r.Hub != nil {
		r.Hub.SetBootstrap(observer.BootstrapFor(w))
	}
	log.Infof("run %s: %s n=%d seed=%d spawn_rate=%d lifespan=%d", r.RunID, cfg.Mode, cfg.N, cfg.Seed, cfg.Params.SpawnRate, cfg.Params.Lifespan)

	start := time.Now()
	var runErr error
loop:
	for r.Ticks == 0 || w.Stats().Ticks < r.Ticks {
		due := 1
		if r.Timer != nil {
			due = r.Timer.Pending(maxCatchUp)
			if due == 0 {
				select {
				case <-ctx.Done():
					break loop
				case <-time.After(r.Timer.Interval() / 4):
				}
				continue
			}
		}
		for ; due > 0; due-- {
			if r.Ticks != 0 && w.Stats().Ticks >= r.Ticks {
				break
			}
			s, err := w.StepContext(ctx, w.Tick())
			if err != nil {
				break loop
			}
			if err := r.deliver(s); err != nil {
				runErr = err
				break loop
			}
			if r.LogEvery > 0 && s.Ticks%r.LogEvery == 0 {
				log.Infof("%s", s)
			}
		}
	}

	final := w.Stats()
	if r.Trace != nil {
		if err := r.Trace.Flush(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if r.Index != nil {
		if err := r.Index.FinishRun(r.RunID, final); err != nil && runErr == nil {
			runErr = err
		}
	}
	elapsed := time.Since(start)
	log.Infof("run %s: %d ticks in %s | %s", r.RunID, final.Ticks, elapsed.Round(time.Millisecond), final)
	return final, runErr
}

func (r *Runner) deliver(s mirror.Stats) error {
	w := r.World
	if r.AutoScan && s.Ticks%scanEvery == 0 {
		w.ShiftView(1)
	}
	if r.Trace != nil {
		if err := r.Trace.WriteStats(r.RunID, w.Config().Mode, s); err != nil {
			return fmt.Errorf("runner: trace: %w", err)
		}
	}
	if r.Index != nil && (r.SampleEvery <= 1 || s.Ticks%r.SampleEvery == 0) {
		r.Index.Sample(r.RunID, s)
	}
	if r.Hub != nil && r.Hub.Sessions() > 0 {
		f, err := observer.FrameFor(w)
		if err != nil {
			return fmt.Errorf("runner: frame: %w", err)
		}
		r.Hub.Publish(f)
	}
	return nil
}
