// Package optimizer enumerates candidate crews for a ship/hostile
// scenario, scores each with the Monte Carlo runner in parallel, and
// produces a ranked list (spec.md §4.4, component C4).
package optimizer

import "github.com/JustinWhittecar/kobayashi/internal/lcars"

// Candidate is one fully-assigned crew awaiting scoring.
type Candidate struct {
	Crew *lcars.Crew
}

// RosterOfficer is one owned officer available to the enumerator, carrying
// the crewed rank the optimizer scores it at (spec.md §6 "Roster"). Tier and
// Level round-trip a player's ownership record for display and "owned only"
// filtering; only Rank feeds lcars.Scaling.Resolve, since the LCARS schema
// has no tier- or level-keyed scaling axis of its own.
type RosterOfficer struct {
	Officer *lcars.Officer
	Rank    int
	Tier    int
	Level   int
}

// BelowDecksMode selects how the below-decks pool is turned into
// candidate slot assignments (spec.md §4.4 rule 3).
type BelowDecksMode string

const (
	// BelowDecksOrdered takes the first k officers from a supplied list.
	BelowDecksOrdered BelowDecksMode = "Ordered"
	// BelowDecksExploration enumerates every C(m, k) combination.
	BelowDecksExploration BelowDecksMode = "Exploration"
)

// HeuristicSeed is a caller-supplied named crew skeleton scored before the
// generated remainder so early cancellation still yields usable results
// (spec.md §4.4 rule 4).
type HeuristicSeed struct {
	Name       string
	Captain    RosterOfficer
	Bridge     [2]RosterOfficer
	BelowDecks []RosterOfficer
}

// GenerateOptions configures candidate enumeration (spec.md §4.4).
type GenerateOptions struct {
	Roster                  []RosterOfficer
	BelowDecksSlots         int // 1..7
	BelowDecksMode          BelowDecksMode
	OrderedBelowDecks       []RosterOfficer // used when BelowDecksMode == BelowDecksOrdered
	OnlyBelowDecksWithAbility bool
	HeuristicSeeds          []HeuristicSeed
	MaxCandidates           int // 0 = unbounded
}

// GenerateCandidates enumerates crew candidates in a fixed order —
// heuristic seeds first, then, for each eligible captain, every bridge pair
// from its synergy pool (synergyBridgePool) with each below-decks
// assignment — applying the pruning rules before a candidate is ever
// handed to the scorer. It builds the whole slice before returning;
// MaxCandidates is its only early stop. Officers outside a captain's group
// are not tried on the bridge when the group supplies at least two, so no
// exhaustive tail follows the synergy pools.
func GenerateCandidates(opts GenerateOptions) []Candidate {
	if opts.BelowDecksSlots < 1 {
		opts.BelowDecksSlots = 1
	}
	if opts.BelowDecksSlots > 7 {
		opts.BelowDecksSlots = 7
	}

	var out []Candidate

	seen := make(map[string]bool)
	emit := func(c Candidate) bool {
		key := candidateKey(c.Crew)
		if seen[key] {
			return true
		}
		seen[key] = true
		out = append(out, c)
		return opts.MaxCandidates == 0 || len(out) < opts.MaxCandidates
	}

	for _, seed := range opts.HeuristicSeeds {
		crew := seedToCrew(seed)
		if crew == nil || crew.Validate() != nil {
			continue
		}
		if !emit(Candidate{Crew: crew}) {
			return out
		}
	}

	captains := eligibleCaptains(opts.Roster)
	for _, captain := range captains {
		bridgePool := synergyBridgePool(opts.Roster, captain)
		for _, bridgePair := range bridgePairs(bridgePool) {
			belowDecksPool := opts.Roster
			if opts.OnlyBelowDecksWithAbility {
				belowDecksPool = filterBelowDecksAbility(belowDecksPool)
			}

			var combos [][]RosterOfficer
			if opts.BelowDecksMode == BelowDecksOrdered && len(opts.OrderedBelowDecks) > 0 {
				combos = [][]RosterOfficer{firstN(opts.OrderedBelowDecks, opts.BelowDecksSlots)}
			} else {
				combos = combinations(excludeAssigned(belowDecksPool, captain, bridgePair), opts.BelowDecksSlots)
			}

			for _, bd := range combos {
				if len(bd) < opts.BelowDecksSlots {
					continue
				}
				crew := assembleCrew(captain, bridgePair, bd)
				if crew.Validate() != nil {
					continue
				}
				if !emit(Candidate{Crew: crew}) {
					return out
				}
			}
		}
	}

	return out
}

func seedToCrew(s HeuristicSeed) *lcars.Crew {
	if s.Captain.Officer == nil || s.Bridge[0].Officer == nil || s.Bridge[1].Officer == nil {
		return nil
	}
	bd := make([]lcars.OfficerAssignment, 0, len(s.BelowDecks))
	for _, o := range s.BelowDecks {
		bd = append(bd, lcars.OfficerAssignment{Officer: o.Officer, Seat: lcars.SeatBelowDecks, Rank: o.Rank})
	}
	return &lcars.Crew{
		Captain: lcars.OfficerAssignment{Officer: s.Captain.Officer, Seat: lcars.SeatCaptain, Rank: s.Captain.Rank},
		Bridge: [2]lcars.OfficerAssignment{
			{Officer: s.Bridge[0].Officer, Seat: lcars.SeatBridge, Rank: s.Bridge[0].Rank},
			{Officer: s.Bridge[1].Officer, Seat: lcars.SeatBridge, Rank: s.Bridge[1].Rank},
		},
		BelowDecks: bd,
	}
}

func assembleCrew(captain RosterOfficer, bridge [2]RosterOfficer, belowDecks []RosterOfficer) *lcars.Crew {
	bd := make([]lcars.OfficerAssignment, 0, len(belowDecks))
	for _, o := range belowDecks {
		bd = append(bd, lcars.OfficerAssignment{Officer: o.Officer, Seat: lcars.SeatBelowDecks, Rank: o.Rank})
	}
	return &lcars.Crew{
		Captain: lcars.OfficerAssignment{Officer: captain.Officer, Seat: lcars.SeatCaptain, Rank: captain.Rank},
		Bridge: [2]lcars.OfficerAssignment{
			{Officer: bridge[0].Officer, Seat: lcars.SeatBridge, Rank: bridge[0].Rank},
			{Officer: bridge[1].Officer, Seat: lcars.SeatBridge, Rank: bridge[1].Rank},
		},
		BelowDecks: bd,
	}
}

// eligibleCaptains applies pruning rule 1: only officers with a captain
// ability can crew the captain seat.
func eligibleCaptains(roster []RosterOfficer) []RosterOfficer {
	out := make([]RosterOfficer, 0, len(roster))
	for _, r := range roster {
		if r.Officer.HasCaptainAbility() {
			out = append(out, r)
		}
	}
	return out
}

// synergyBridgePool applies pruning rule 2: bridge officers are limited to
// those sharing the captain's group tag.
func synergyBridgePool(roster []RosterOfficer, captain RosterOfficer) []RosterOfficer {
	out := make([]RosterOfficer, 0, len(roster))
	for _, r := range roster {
		if r.Officer.ID == captain.Officer.ID {
			continue
		}
		if captain.Officer.Group != "" && r.Officer.Group == captain.Officer.Group {
			out = append(out, r)
		}
	}
	if len(out) < 2 {
		// No synergy pair available; fall back to the full roster minus the
		// captain rather than yielding zero candidates for this captain.
		out = out[:0]
		for _, r := range roster {
			if r.Officer.ID != captain.Officer.ID {
				out = append(out, r)
			}
		}
	}
	return out
}

func bridgePairs(pool []RosterOfficer) [][2]RosterOfficer {
	var pairs [][2]RosterOfficer
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			pairs = append(pairs, [2]RosterOfficer{pool[i], pool[j]})
		}
	}
	return pairs
}

func filterBelowDecksAbility(pool []RosterOfficer) []RosterOfficer {
	out := make([]RosterOfficer, 0, len(pool))
	for _, r := range pool {
		if r.Officer.HasBelowDecksAbility() {
			out = append(out, r)
		}
	}
	return out
}

func excludeAssigned(pool []RosterOfficer, captain RosterOfficer, bridge [2]RosterOfficer) []RosterOfficer {
	excluded := map[string]bool{captain.Officer.ID: true, bridge[0].Officer.ID: true, bridge[1].Officer.ID: true}
	out := make([]RosterOfficer, 0, len(pool))
	for _, r := range pool {
		if !excluded[r.Officer.ID] {
			out = append(out, r)
		}
	}
	return out
}

func firstN(pool []RosterOfficer, n int) []RosterOfficer {
	if n > len(pool) {
		n = len(pool)
	}
	return append([]RosterOfficer(nil), pool[:n]...)
}

// combinations enumerates C(len(pool), k) subsets of pool in index order.
func combinations(pool []RosterOfficer, k int) [][]RosterOfficer {
	if k <= 0 || k > len(pool) {
		return nil
	}
	var out [][]RosterOfficer
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]RosterOfficer, k)
		for i, ix := range idx {
			combo[i] = pool[ix]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == i+len(pool)-k {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

func candidateKey(crew *lcars.Crew) string {
	key := crew.Captain.Officer.ID + "|" + crew.Bridge[0].Officer.ID + "|" + crew.Bridge[1].Officer.ID
	for _, bd := range crew.BelowDecks {
		key += "|" + bd.Officer.ID
	}
	return key
}
