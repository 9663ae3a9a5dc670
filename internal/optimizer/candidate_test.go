package optimizer

import (
	"testing"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

func off(id, group string, isCaptain, isBelowDecks bool) *lcars.Officer {
	o := &lcars.Officer{ID: id, Name: id, Group: group}
	if isCaptain {
		o.Captain = &lcars.Ability{Name: "cap-ability"}
	}
	if isBelowDecks {
		o.BelowDecks = &lcars.Ability{Name: "bd-ability"}
	}
	return o
}

func TestGenerateCandidatesOnlyEligibleCaptains(t *testing.T) {
	roster := []RosterOfficer{
		{Officer: off("cap1", "G1", true, false), Rank: 1},
		{Officer: off("noncap", "G1", false, false), Rank: 1},
		{Officer: off("b1", "G1", false, true), Rank: 1},
		{Officer: off("b2", "G1", false, true), Rank: 1},
		{Officer: off("b3", "G1", false, true), Rank: 1},
	}
	candidates := GenerateCandidates(GenerateOptions{
		Roster:          roster,
		BelowDecksSlots: 1,
		BelowDecksMode:  BelowDecksExploration,
	})
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	for _, c := range candidates {
		if c.Crew.Captain.Officer.ID != "cap1" {
			t.Errorf("captain seat filled by non-eligible officer %s", c.Crew.Captain.Officer.ID)
		}
	}
}

func TestGenerateCandidatesRespectsMaxCandidates(t *testing.T) {
	roster := []RosterOfficer{
		{Officer: off("cap1", "G1", true, false), Rank: 1},
		{Officer: off("cap2", "G1", true, false), Rank: 1},
		{Officer: off("b1", "G1", false, true), Rank: 1},
		{Officer: off("b2", "G1", false, true), Rank: 1},
		{Officer: off("b3", "G1", false, true), Rank: 1},
		{Officer: off("b4", "G1", false, true), Rank: 1},
		{Officer: off("b5", "G1", false, true), Rank: 1},
	}
	candidates := GenerateCandidates(GenerateOptions{
		Roster:          roster,
		BelowDecksSlots: 1,
		BelowDecksMode:  BelowDecksExploration,
		MaxCandidates:   3,
	})
	if len(candidates) > 3 {
		t.Errorf("len(candidates) = %d, want <= 3", len(candidates))
	}
}

func TestGenerateCandidatesHeuristicSeedsComeFirst(t *testing.T) {
	roster := []RosterOfficer{
		{Officer: off("cap1", "G1", true, false), Rank: 1},
		{Officer: off("b1", "G1", false, true), Rank: 1},
		{Officer: off("b2", "G1", false, true), Rank: 1},
		{Officer: off("b3", "G1", false, true), Rank: 1},
	}
	seed := HeuristicSeed{
		Name:       "known-good",
		Captain:    roster[0],
		Bridge:     [2]RosterOfficer{roster[2], roster[3]},
		BelowDecks: []RosterOfficer{roster[1]},
	}
	candidates := GenerateCandidates(GenerateOptions{
		Roster:          roster,
		BelowDecksSlots: 1,
		BelowDecksMode:  BelowDecksExploration,
		HeuristicSeeds:  []HeuristicSeed{seed},
	})
	if len(candidates) == 0 {
		t.Fatal("expected candidates")
	}
	// The first enumerated crew would put b3 below decks; only the seed has b1 there.
	if got := candidates[0].Crew.BelowDecks[0].Officer.ID; got != "b1" {
		t.Errorf("first candidate below-decks = %q, want the heuristic seed's b1", got)
	}
}

func TestCombinationsCount(t *testing.T) {
	pool := []RosterOfficer{{Officer: off("a", "", false, false)}, {Officer: off("b", "", false, false)}, {Officer: off("c", "", false, false)}}
	combos := combinations(pool, 2)
	if len(combos) != 3 {
		t.Errorf("C(3,2) = %d combos, want 3", len(combos))
	}
}
