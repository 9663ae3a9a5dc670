package montecarlo

import (
	"runtime"
	"sync"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

// Options carries a Monte Carlo run's per-scenario knobs (spec.md §9 typed
// option records).
type Options struct {
	N        uint64
	BaseSeed uint64
	// Workers overrides runtime.NumCPU() when nonzero; used by tests to
	// pin worker count and assert determinism across counts.
	Workers int
}

// Scenario is the fixed (attacker, defender, buffs) tuple a batch of fights
// samples against. Buffs are compiled once by the caller and shared
// read-only across every worker (spec.md §4.3 "Scenario cache").
type Scenario struct {
	Attacker      combat.DefenderStats
	Defender      combat.DefenderStats
	AttackerBuffs *lcars.BuffSet
	DefenderBuffs *lcars.BuffSet
}

// RunMonteCarlo runs Options.N seeded fights for scenario and reduces them
// into AggregateStats (spec.md §4.3). Work is partitioned across
// runtime.NumCPU() workers (or Options.Workers when set); each worker owns
// a private local accumulator and a reused Trace, merged into the final
// result only after every worker completes — the merge is commutative, so
// the result is identical regardless of worker count (spec.md §5
// "Ordering guarantees").
func RunMonteCarlo(scenario Scenario, opts Options) AggregateStats {
	if opts.N == 0 {
		return AggregateStats{}
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if uint64(numWorkers) > opts.N {
		numWorkers = int(opts.N)
	}

	jobs := make(chan uint64, numWorkers*4)
	partials := make(chan accumulator, numWorkers)
	var wg sync.WaitGroup

	attackerBuffs, defenderBuffs := scenario.AttackerBuffs, scenario.DefenderBuffs
	if attackerBuffs == nil {
		attackerBuffs = &lcars.BuffSet{}
	}
	if defenderBuffs == nil {
		defenderBuffs = &lcars.BuffSet{}
	}

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local accumulator
			var trace combat.Trace
			for i := range jobs {
				seed := combat.SplitMix64(opts.BaseSeed ^ i)
				out := combat.Simulate(scenario.Attacker, scenario.Defender, attackerBuffs, defenderBuffs, seed, &trace)
				if out.Invalid {
					local.addInvalid()
					continue
				}
				local.add(out.Win, out.Stall, out.AttackerHullFrac, out.Rounds, out.DamageDealtRound1)
			}
			partials <- local
		}()
	}

	go func() {
		for i := uint64(0); i < opts.N; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(partials)
	}()

	var total accumulator
	for p := range partials {
		total.merge(&p)
	}

	return total.finalize()
}
