package optimizer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/montecarlo"
)

// ScoreOptions configures a parallel scoring pass over a candidate set
// (spec.md §4.4 "Parallel execution").
type ScoreOptions struct {
	Ship              combat.DefenderStats
	ShipStatSource    lcars.StatSource
	Hostile           combat.DefenderStats
	HostileStatSource lcars.StatSource
	Profile           lcars.Profile
	SimulationCount   uint64
	BaseSeed          uint64
	Workers           int // 0 = runtime.NumCPU()
}

// Progress is the atomic-counter status surface spec.md §4.4/§5 requires: a
// status endpoint reads these without locking. Generation/MaxGeneration are
// only meaningful under StrategyGenetic (SPEC_FULL.md §4.5); the exhaustive
// path never touches them, so they read 0/0 there.
type Progress struct {
	Completed     atomic.Int64
	Total         atomic.Int64
	Cancelled     atomic.Bool
	Generation    atomic.Int64
	MaxGeneration atomic.Int64
}

// ScoreCandidates compiles and runs a Monte Carlo batch for every
// candidate in parallel, publishing progress as it goes. Each worker owns
// a private compiled-BuffSet cache slot (recompiled per candidate, since
// crews differ) and the Monte Carlo runner's own scratch — no shared
// mutable state besides the progress counters and the lock-free result
// slice index, mirroring the teacher's jobs/results channel pool
// (cmd/calc-cr-v2/main.go) retargeted from mech variants to crew
// candidates.
func ScoreCandidates(candidates []Candidate, opts ScoreOptions, progress *Progress) []ScoredCandidate {
	if progress == nil {
		progress = &Progress{}
	}
	progress.Total.Store(int64(len(candidates)))
	progress.Completed.Store(0)

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(candidates) {
		numWorkers = len(candidates)
	}
	if numWorkers == 0 {
		return nil
	}

	results := make([]ScoredCandidate, len(candidates))
	jobs := make(chan int, len(candidates))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if progress.Cancelled.Load() {
					continue
				}
				c := candidates[idx]
				buffs, err := lcars.Compile(c.Crew, opts.ShipStatSource, opts.Profile, lcars.CompileOptions{})
				if err != nil {
					progress.Completed.Add(1)
					continue
				}
				stats := montecarlo.RunMonteCarlo(montecarlo.Scenario{
					Attacker:      opts.Ship,
					Defender:      opts.Hostile,
					AttackerBuffs: buffs,
					DefenderBuffs: &lcars.BuffSet{},
				}, montecarlo.Options{N: opts.SimulationCount, BaseSeed: opts.BaseSeed})

				results[idx] = ScoredCandidate{Crew: c.Crew, Stats: stats}
				progress.Completed.Add(1)
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if !progress.Cancelled.Load() {
		return results
	}
	// Cooperative cancellation: keep whatever was scored before the flag
	// was observed, dropping the zero-value tail (spec.md §4.4 "Job
	// lifecycle" — partial results up to that point are still reported).
	out := results[:0]
	for _, r := range results {
		if r.Crew != nil {
			out = append(out, r)
		}
	}
	return out
}
