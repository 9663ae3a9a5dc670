// Command optimize runs the full crew-candidate search over an owned
// roster against one ship/hostile scenario and prints the ranked top-K, the
// CLI-driven twin of cmd/calc-cr-v2/main.go's worker-pool-plus-atomic-
// progress batch runner (jobs/results channels, runtime.NumCPU() workers)
// retargeted from mech variants to crew candidates.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/JustinWhittecar/kobayashi/internal/config"
	"github.com/JustinWhittecar/kobayashi/internal/data"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/optimizer"
)

func main() {
	paths := config.DefaultDataPaths()
	paths.RegisterFlags(flag.CommandLine)

	shipID := flag.String("ship", "", "ship record id")
	hostileID := flag.String("hostile", "", "hostile record id")
	rosterPath := flag.String("roster", "", "path to the owned-officer roster JSON file")
	belowDecksSlots := flag.Int("below-decks-slots", 4, "number of below-decks seats to fill (1..7)")
	exploration := flag.Bool("exploration", false, "enumerate every below-decks combination (this CLI supplies no fixed below-decks ordering, so every combination is enumerated either way)")
	maxCandidates := flag.Int("max-candidates", 0, "cap on generated candidates (0 = unbounded)")
	metric := flag.String("metric", string(optimizer.MetricWinRate), "ranking metric: win_rate | r1_kill_rate | avg_hull_frac_when_winning")
	topK := flag.Int("top-k", 50, "number of ranked candidates to print")
	sampleCount := flag.Uint64("samples", 200, "Monte Carlo samples per candidate")
	baseSeed := flag.Uint64("seed", 42, "base PRNG seed")
	workers := flag.Int("workers", 0, "worker count override (0 = runtime.NumCPU())")
	budget := flag.Duration("budget", 0, "wall-clock budget for the whole run (0 = unbounded)")
	strategy := flag.String("strategy", string(optimizer.StrategyExhaustive), "candidate search strategy: Exhaustive | Genetic")
	population := flag.Int("population", 0, "genetic population size (0 = default)")
	generations := flag.Int("generations", 0, "genetic generation budget (0 = default)")
	mutationRate := flag.Float64("mutation-rate", 0, "genetic mutation probability per child (0 = default)")
	eliteCount := flag.Int("elite-count", 0, "genetic elite carryover count (0 = default)")
	flag.Parse()

	if *shipID == "" || *hostileID == "" || *rosterPath == "" {
		log.Fatal("usage: optimize --ship <id> --hostile <id> --roster <path> [--below-decks-slots N] [--samples N]")
	}

	shipRec, err := data.LoadShipRecord(paths.ShipsDir, *shipID)
	if err != nil {
		log.Fatalf("load ship: %v", err)
	}
	hostileRec, err := data.LoadHostileRecord(paths.HostilesDir, *hostileID)
	if err != nil {
		log.Fatalf("load hostile: %v", err)
	}
	catalogue, err := data.LoadOfficerCatalogue(paths.OfficersDir)
	if err != nil {
		log.Fatalf("load officer catalogue: %v", err)
	}
	owned, err := data.LoadOwnedRoster(*rosterPath)
	if err != nil {
		log.Fatalf("load owned roster: %v", err)
	}
	roster := data.ResolveRoster(catalogue, owned)
	if len(roster) == 0 {
		log.Fatal("roster resolved to zero officers; check --roster against the officer catalogue")
	}
	profile := data.LoadProfile(paths.ProfilePath)

	ship := shipRec.ToDefenderStats()
	hostile := hostileRec.ToDefenderStats()

	belowDecksMode := optimizer.BelowDecksOrdered
	if *exploration {
		belowDecksMode = optimizer.BelowDecksExploration
	}

	runOpts := optimizer.RunOptions{
		Strategy: optimizer.Strategy(*strategy),
		Generate: optimizer.GenerateOptions{
			Roster:          roster,
			BelowDecksSlots: *belowDecksSlots,
			BelowDecksMode:  belowDecksMode,
			MaxCandidates:   *maxCandidates,
		},
		Score: optimizer.ScoreOptions{
			Ship:            ship,
			ShipStatSource:  lcars.StatSource(ship.ToStatSource()),
			Hostile:         hostile,
			Profile:         profile,
			SimulationCount: *sampleCount,
			BaseSeed:        *baseSeed,
			Workers:         *workers,
		},
		Genetic: optimizer.GeneticOptions{
			PopulationSize: *population,
			Generations:    *generations,
			MutationRate:   *mutationRate,
			EliteCount:     *eliteCount,
			Seed:           *baseSeed,
		},
		Metric: optimizer.PrimaryMetric(*metric),
		TopK:   *topK,
	}

	if runOpts.Strategy == optimizer.StrategyExhaustive {
		candidateCount := len(optimizer.GenerateCandidates(runOpts.Generate))
		if candidateCount == 0 {
			log.Fatal("no eligible crew candidates for this roster (check for a captain-eligible officer)")
		}
		log.Printf("generated %d candidates, scoring with %d samples each...", candidateCount, *sampleCount)
	} else {
		log.Printf("running genetic search over %d officers, scoring with %d samples each...", len(roster), *sampleCount)
	}

	type runOutcome struct {
		scored []optimizer.ScoredCandidate
		err    error
	}
	progress := &optimizer.Progress{}
	done := make(chan runOutcome, 1)
	go func() {
		scored, err := optimizer.RunWithProgress(runOpts, progress)
		done <- runOutcome{scored: scored, err: err}
	}()

	var outcome runOutcome
	ticker := time.NewTicker(2 * time.Second)
	deadline := timeoutChan(*budget)
loop:
	for {
		select {
		case outcome = <-done:
			ticker.Stop()
			break loop
		case <-ticker.C:
			if runOpts.Strategy == optimizer.StrategyGenetic {
				log.Printf("  generation: %d/%d", progress.Generation.Load(), progress.MaxGeneration.Load())
			} else {
				log.Printf("  progress: %d/%d", progress.Completed.Load(), progress.Total.Load())
			}
		case <-deadline:
			ticker.Stop()
			log.Printf("wall-clock budget of %s reached, cancelling", *budget)
			progress.Cancelled.Store(true)
			outcome = <-done
			break loop
		}
	}
	if outcome.err != nil {
		log.Fatalf("optimize run failed: %v", outcome.err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(outcome.scored)
}

// timeoutChan returns a channel that fires once after d, or nil (which
// blocks forever in a select) when d is zero, so an unbounded run never
// races a spurious cancellation.
func timeoutChan(d time.Duration) <-chan time.Time {
	if d <= 0 {
		return nil
	}
	return time.After(d)
}
