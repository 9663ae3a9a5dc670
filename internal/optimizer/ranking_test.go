package optimizer

import (
	"testing"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/montecarlo"
)

func crewStub(id string) *lcars.Crew {
	return &lcars.Crew{Captain: lcars.OfficerAssignment{Officer: &lcars.Officer{ID: id}}}
}

func TestRankOrdersByPrimaryMetricDescending(t *testing.T) {
	candidates := []ScoredCandidate{
		{Crew: crewStub("low"), Stats: montecarlo.AggregateStats{WinRate: 0.2}},
		{Crew: crewStub("high"), Stats: montecarlo.AggregateStats{WinRate: 0.9}},
		{Crew: crewStub("mid"), Stats: montecarlo.AggregateStats{WinRate: 0.5}},
	}
	ranked := Rank(MetricWinRate, candidates)
	if ranked[0].Crew.Captain.Officer.ID != "high" {
		t.Errorf("first = %s, want high", ranked[0].Crew.Captain.Officer.ID)
	}
	if ranked[2].Crew.Captain.Officer.ID != "low" {
		t.Errorf("last = %s, want low", ranked[2].Crew.Captain.Officer.ID)
	}
}

func TestRankTieBreaksByHullFracThenAvgRounds(t *testing.T) {
	candidates := []ScoredCandidate{
		{Crew: crewStub("a"), Stats: montecarlo.AggregateStats{WinRate: 0.5, AvgHullFracWhenWinning: 0.3, AvgRounds: 4}},
		{Crew: crewStub("b"), Stats: montecarlo.AggregateStats{WinRate: 0.5, AvgHullFracWhenWinning: 0.6, AvgRounds: 4}},
	}
	ranked := Rank(MetricWinRate, candidates)
	if ranked[0].Crew.Captain.Officer.ID != "b" {
		t.Errorf("tie-break should favor higher hull frac; got %s first", ranked[0].Crew.Captain.Officer.ID)
	}

	tiedHullFrac := []ScoredCandidate{
		{Crew: crewStub("slow"), Stats: montecarlo.AggregateStats{WinRate: 0.5, AvgHullFracWhenWinning: 0.4, AvgRounds: 6}},
		{Crew: crewStub("fast"), Stats: montecarlo.AggregateStats{WinRate: 0.5, AvgHullFracWhenWinning: 0.4, AvgRounds: 2}},
	}
	ranked = Rank(MetricWinRate, tiedHullFrac)
	if ranked[0].Crew.Captain.Officer.ID != "fast" {
		t.Errorf("tie-break should favor fewer avg rounds; got %s first", ranked[0].Crew.Captain.Officer.ID)
	}
}

func TestTopKTruncates(t *testing.T) {
	candidates := make([]ScoredCandidate, 10)
	for i := range candidates {
		candidates[i] = ScoredCandidate{Crew: crewStub("x")}
	}
	if got := TopK(candidates, 3); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if got := TopK(candidates, 0); len(got) != 10 {
		t.Errorf("k=0 should return all, got %d", len(got))
	}
}
