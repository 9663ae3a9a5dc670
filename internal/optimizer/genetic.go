package optimizer

import (
	"github.com/JustinWhittecar/kobayashi/internal/combat"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

// Strategy selects the candidate-generation algorithm (SPEC_FULL.md §4.5,
// supplemental to spec.md's distillation). Grounded on
// original_source/src/optimizer/mod.rs's OptimizerStrategy enum
// {Exhaustive, Genetic}.
type Strategy string

const (
	StrategyExhaustive Strategy = "Exhaustive"
	StrategyGenetic    Strategy = "Genetic"
)

// GeneticOptions configures the genetic search, used only when Strategy ==
// StrategyGenetic. PopulationSize/Generations/MutationRate mirror
// original_source's GeneticConfig shape.
type GeneticOptions struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	EliteCount     int
	Seed           uint64
}

func (o GeneticOptions) withDefaults() GeneticOptions {
	if o.PopulationSize <= 0 {
		o.PopulationSize = 64
	}
	if o.Generations <= 0 {
		o.Generations = 40
	}
	if o.MutationRate <= 0 {
		o.MutationRate = 0.05
	}
	if o.EliteCount <= 0 {
		o.EliteCount = o.PopulationSize / 8
		if o.EliteCount < 1 {
			o.EliteCount = 1
		}
	}
	return o
}

// RunGenetic evolves a population of crew candidates toward the given
// primary metric across the roster, for search spaces too large for
// exhaustive enumeration to reach in a wall-clock budget (spec.md §4.4
// "candidate space... ~10^23... not enumerable directly"). Each
// generation scores the population with ScoreCandidates (identical
// parallel worker pool as the exhaustive path), keeps the elite, and
// breeds the remainder by crossover-and-mutate over seat assignments.
func RunGenetic(opts GeneticOptions, roster []RosterOfficer, belowDecksSlots int, scoreOpts ScoreOptions, metric PrimaryMetric, progress *Progress, onGeneration func(gen, total int)) ([]ScoredCandidate, error) {
	opts = opts.withDefaults()
	rng := combat.NewPRNG(opts.Seed)

	population := seedPopulation(rng, roster, belowDecksSlots, opts.PopulationSize)
	if len(population) == 0 {
		return nil, ErrNoEligibleCandidates
	}

	var best []ScoredCandidate
	for gen := 0; gen < opts.Generations; gen++ {
		candidates := make([]Candidate, len(population))
		for i, crew := range population {
			candidates[i] = Candidate{Crew: crew}
		}

		scored := ScoreCandidates(candidates, scoreOpts, progress)
		ranked := Rank(metric, scored)
		best = ranked

		if progress != nil && progress.Cancelled.Load() {
			break
		}
		if onGeneration != nil {
			onGeneration(gen+1, opts.Generations)
		}
		if gen == opts.Generations-1 {
			break
		}

		population = nextGeneration(rng, ranked, roster, belowDecksSlots, opts)
	}

	return best, nil
}

func seedPopulation(rng *combat.PRNG, roster []RosterOfficer, belowDecksSlots, size int) []*lcars.Crew {
	captains := eligibleCaptains(roster)
	if len(captains) == 0 || len(roster) < 3+belowDecksSlots {
		return nil
	}
	out := make([]*lcars.Crew, 0, size)
	for len(out) < size {
		crew := randomCrew(rng, roster, captains, belowDecksSlots)
		if crew != nil && crew.Validate() == nil {
			out = append(out, crew)
		}
	}
	return out
}

func randomCrew(rng *combat.PRNG, roster []RosterOfficer, captains []RosterOfficer, belowDecksSlots int) *lcars.Crew {
	captain := captains[randIndex(rng, len(captains))]
	pool := synergyBridgePool(roster, captain)
	if len(pool) < 2 {
		return nil
	}
	i := randIndex(rng, len(pool))
	j := randIndex(rng, len(pool))
	for j == i {
		j = randIndex(rng, len(pool))
	}
	bridge := [2]RosterOfficer{pool[i], pool[j]}

	remainder := excludeAssigned(roster, captain, bridge)
	if len(remainder) < belowDecksSlots {
		return nil
	}
	shuffle(rng, remainder)
	return assembleCrew(captain, bridge, remainder[:belowDecksSlots])
}

// nextGeneration keeps the top EliteCount unchanged and fills the rest of
// the population via single-point crossover between two elite parents'
// below-decks lists, then mutates a random below-decks seat with MutationRate
// probability — the classic GA loop original_source's genetic.rs names
// but (per its own file, a 9-line stub) does not implement; built here in
// the teacher's small-pure-function style instead of transliterated from
// nonexistent Rust source.
func nextGeneration(rng *combat.PRNG, ranked []ScoredCandidate, roster []RosterOfficer, belowDecksSlots int, opts GeneticOptions) []*lcars.Crew {
	if len(ranked) == 0 {
		return seedPopulation(rng, roster, belowDecksSlots, opts.PopulationSize)
	}

	elite := make([]*lcars.Crew, 0, opts.EliteCount)
	for i := 0; i < opts.EliteCount && i < len(ranked); i++ {
		elite = append(elite, ranked[i].Crew)
	}

	captains := eligibleCaptains(roster)
	next := append([]*lcars.Crew(nil), elite...)
	for len(next) < opts.PopulationSize {
		parentA := elite[randIndex(rng, len(elite))]
		parentB := elite[randIndex(rng, len(elite))]
		child := crossover(rng, parentA, parentB)
		if rng.NextFloat64() < opts.MutationRate {
			child = mutate(rng, child, roster, captains, belowDecksSlots)
		}
		if child != nil && child.Validate() == nil {
			next = append(next, child)
		} else {
			c := randomCrew(rng, roster, captains, belowDecksSlots)
			if c != nil {
				next = append(next, c)
			}
		}
	}
	return next
}

func crossover(rng *combat.PRNG, a, b *lcars.Crew) *lcars.Crew {
	captain := a.Captain
	if rng.NextFloat64() < 0.5 {
		captain = b.Captain
	}
	bridge := a.Bridge
	if rng.NextFloat64() < 0.5 {
		bridge = b.Bridge
	}

	// Single-point crossover: a's list up to cut, then b's; a's tail only
	// fills seats left open by duplicates.
	cut := randIndex(rng, len(a.BelowDecks)+1)
	seen := map[string]bool{captain.Officer.ID: true, bridge[0].Officer.ID: true, bridge[1].Officer.ID: true}
	var belowDecks []lcars.OfficerAssignment
	for _, pool := range [][]lcars.OfficerAssignment{a.BelowDecks[:cut], b.BelowDecks, a.BelowDecks[cut:]} {
		for _, o := range pool {
			if len(belowDecks) >= len(a.BelowDecks) {
				break
			}
			if seen[o.Officer.ID] {
				continue
			}
			seen[o.Officer.ID] = true
			belowDecks = append(belowDecks, o)
		}
	}
	if len(belowDecks) < len(a.BelowDecks) {
		return nil
	}
	return &lcars.Crew{Captain: captain, Bridge: bridge, BelowDecks: belowDecks}
}

func mutate(rng *combat.PRNG, crew *lcars.Crew, roster []RosterOfficer, captains []RosterOfficer, belowDecksSlots int) *lcars.Crew {
	if crew == nil || len(crew.BelowDecks) == 0 {
		return crew
	}
	swapIdx := randIndex(rng, len(crew.BelowDecks))
	replacement := roster[randIndex(rng, len(roster))]
	mutated := *crew
	mutated.BelowDecks = append([]lcars.OfficerAssignment(nil), crew.BelowDecks...)
	mutated.BelowDecks[swapIdx] = lcars.OfficerAssignment{Officer: replacement.Officer, Seat: lcars.SeatBelowDecks, Rank: replacement.Rank}
	return &mutated
}

func randIndex(rng *combat.PRNG, n int) int {
	if n <= 1 {
		return 0
	}
	return int(rng.NextFloat64() * float64(n))
}

func shuffle(rng *combat.PRNG, s []RosterOfficer) {
	for i := len(s) - 1; i > 0; i-- {
		j := randIndex(rng, i+1)
		s[i], s[j] = s[j], s[i]
	}
}

// RunOptions bundles everything RunWithProgress needs to reduce one
// scenario into a RankedList regardless of Strategy (SPEC_FULL.md §4.5):
// candidate-generation knobs, scoring knobs, the genetic search's own
// knobs (ignored under StrategyExhaustive), and the shared rank-and-
// truncate step both strategies finish with.
type RunOptions struct {
	Strategy Strategy
	Generate GenerateOptions
	Score    ScoreOptions
	Genetic  GeneticOptions
	Metric   PrimaryMetric
	TopK     int
}

// RunWithProgress dispatches to the exhaustive GenerateCandidates+
// ScoreCandidates pipeline or the genetic search according to
// opts.Strategy, exactly as original_source's
// optimize_scenario_with_progress does. Both strategies terminate in a
// RankedList; this is the only entry point cmd/optimize, cmd/server, and
// the async Job wrapper need to know about. A non-nil error means the
// scenario produced zero candidates under either strategy — the caller
// (Job.Run) surfaces this as JobError rather than a silently empty
// ranking, per spec.md §4.4/§5's job-lifecycle state set.
func RunWithProgress(opts RunOptions, progress *Progress) ([]ScoredCandidate, error) {
	if progress == nil {
		progress = &Progress{}
	}

	if opts.Strategy == StrategyGenetic {
		onGeneration := func(gen, total int) {
			progress.Generation.Store(int64(gen))
			progress.MaxGeneration.Store(int64(total))
		}
		best, err := RunGenetic(opts.Genetic, opts.Generate.Roster, opts.Generate.BelowDecksSlots, opts.Score, opts.Metric, progress, onGeneration)
		if err != nil {
			return nil, err
		}
		return TopK(best, opts.TopK), nil // RunGenetic already ranks its final generation
	}

	candidates := GenerateCandidates(opts.Generate)
	if len(candidates) == 0 {
		return nil, ErrNoEligibleCandidates
	}
	scored := ScoreCandidates(candidates, opts.Score, progress)
	return TopK(Rank(opts.Metric, scored), opts.TopK), nil
}
