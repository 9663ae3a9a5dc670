package optimizer

import (
	"sort"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/montecarlo"
)

// PrimaryMetric selects the score the ranked list is sorted on first
// (spec.md §4.4 "Ranking").
type PrimaryMetric string

const (
	MetricWinRate      PrimaryMetric = "win_rate"
	MetricR1KillRate   PrimaryMetric = "r1_kill_rate"
	MetricAvgHullFrac  PrimaryMetric = "avg_hull_frac_when_winning"
)

// ScoredCandidate pairs one candidate crew with its Monte Carlo result.
type ScoredCandidate struct {
	Crew  *lcars.Crew
	Stats montecarlo.AggregateStats
}

func primaryValue(metric PrimaryMetric, s montecarlo.AggregateStats) float64 {
	switch metric {
	case MetricR1KillRate:
		return s.R1KillRate
	case MetricAvgHullFrac:
		return s.AvgHullFracWhenWinning
	default:
		return s.WinRate
	}
}

// Rank sorts scored candidates by the configured primary metric, breaking
// ties by win_rate, then avg_hull_frac_when_winning, then inverse
// avg_rounds (fewer rounds to resolve a fight ranks higher), all
// descending except the rounds comparison — spec.md §4.4's exact
// tie-break chain. The sort is stable so identical scores preserve
// enumeration order, keeping the ranked output reproducible.
func Rank(metric PrimaryMetric, candidates []ScoredCandidate) []ScoredCandidate {
	ranked := append([]ScoredCandidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Stats, ranked[j].Stats
		if pa, pb := primaryValue(metric, a), primaryValue(metric, b); pa != pb {
			return pa > pb
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.AvgHullFracWhenWinning != b.AvgHullFracWhenWinning {
			return a.AvgHullFracWhenWinning > b.AvgHullFracWhenWinning
		}
		return a.AvgRounds < b.AvgRounds
	})
	return ranked
}

// TopK truncates a ranked list to its first k entries, returning the full
// slice unchanged when k <= 0 or the list is already shorter. It applies
// no default of its own; cmd/optimize's --top-k flag defaults to 50.
func TopK(ranked []ScoredCandidate, k int) []ScoredCandidate {
	if k <= 0 || k >= len(ranked) {
		return ranked
	}
	return ranked[:k]
}
