package main

import (
	"flag"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"mirror-ca/internal/sims/mirror"
)

type paramSet struct {
	mode      mirror.Mode
	spawnRate int
	lifespan  int
	mirrored  bool
}

func (p paramSet) String() string {
	return fmt.Sprintf("mode=%s rate=%d life=%d mirrored=%v", p.mode, p.spawnRate, p.lifespan, p.mirrored)
}

type scenarioResult struct {
	params paramSet
	err    error
	final  mirror.Stats
	// imbalance is (liveA-liveB)/(liveA+liveB) averaged over the sampled ticks.
	imbalance float64
	peakLive  int
}

func main() {
	steps := flag.Int("steps", 400, "ticks to simulate per scenario")
	n := flag.Int("n", 33, "lattice side length (odd)")
	seed := flag.Int64("seed", 1337, "seed for every scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	flag.Parse()

	base := mirror.DefaultConfig()
	base.N = *n
	base.Seed = *seed
	// Scenarios run in parallel already; keep each lattice on one goroutine.
	base.Workers = 1

	sets := buildSets([]int{20, 40, 80}, []int{60, 120, 240})
	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps, n=%d)\n", len(sets), *workers, *steps, base.N)

	start := time.Now()
	all := sweep(base, sets, *steps, *workers)
	sort.Slice(all, func(i, j int) bool { return math.Abs(all[i].imbalance) > math.Abs(all[j].imbalance) })

	fmt.Printf("\nResults by A/B imbalance (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i, res := range all {
		if res.err != nil {
			fmt.Printf("%2d) %s: %v\n", i+1, res.params, res.err)
			continue
		}
		s := res.final
		fmt.Printf("%2d) imbalance=%+.3f peak=%d live=%d/%d spawned=%d/%d annih=%d destroyed=%d/%d %s\n",
			i+1, res.imbalance, res.peakLive, s.LiveA, s.LiveB, s.TotalSpawnedA, s.TotalSpawnedB,
			s.TotalAnnihilations, s.TotalDestroyedA, s.TotalDestroyedB, res.params)
	}
}

func buildSets(rates, lifespans []int) []paramSet {
	var sets []paramSet
	for _, mode := range []mirror.Mode{mirror.ModeSymmetric, mirror.ModePriority} {
		for _, rate := range rates {
			for _, life := range lifespans {
				for _, mirrored := range []bool{false, true} {
					sets = append(sets, paramSet{mode: mode, spawnRate: rate, lifespan: life, mirrored: mirrored})
				}
			}
		}
	}
	return sets
}

func sweep(base mirror.Config, sets []paramSet, steps, workers int) []scenarioResult {
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(base, params, steps)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	all := make([]scenarioResult, 0, len(sets))
	for res := range results {
		all = append(all, res)
	}
	return all
}

func runScenario(base mirror.Config, params paramSet, steps int) scenarioResult {
	cfg := base
	cfg.Mode = params.mode
	cfg.Params.SpawnRate = params.spawnRate
	cfg.Params.Lifespan = params.lifespan
	cfg.Mirrored = params.mirrored

	res := scenarioResult{params: params}
	world, err := mirror.NewWithConfig(cfg)
	if err != nil {
		res.err = err
		return res
	}

	var sum float64
	var samples int
	for i := 0; i < steps; i++ {
		s := world.StepTick(uint32(i))
		live := s.LiveA + s.LiveB
		if live > res.peakLive {
			res.peakLive = live
		}
		if live > 0 {
			sum += float64(s.LiveA-s.LiveB) / float64(live)
			samples++
		}
	}
	if samples > 0 {
		res.imbalance = sum / float64(samples)
	}
	res.final = world.Stats()
	return res
}
