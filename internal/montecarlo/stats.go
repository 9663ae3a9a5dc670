// Package montecarlo runs N seeded fights for a fixed scenario and reduces
// their outcomes into AggregateStats, the input the optimizer ranks on.
package montecarlo

import "math"

// AggregateStats is the per-scenario reduction of N FightOutcomes
// (spec.md §3). Field names mirror the pinned external payload shape.
type AggregateStats struct {
	WinRate                float64    `json:"win_rate"`
	StallRate              float64    `json:"stall_rate"`
	LossRate               float64    `json:"loss_rate"`
	AvgHullFracWhenWinning float64    `json:"avg_hull_frac_when_winning"`
	R1KillRate             float64    `json:"r1_kill_rate"`
	AvgDamageRound1        float64    `json:"avg_damage_round_1"`
	AvgRounds              float64    `json:"avg_rounds"`
	N                      uint64     `json:"n"`
	WinRate95CI            [2]float64 `json:"win_rate_95_ci"`
	// InvalidFights counts fights aborted mid-simulation with a non-finite
	// value (spec.md §7 Internal error row); these are excluded from every
	// other accumulator above but never dropped from the batch silently.
	InvalidFights uint64 `json:"invalid_fights"`
}

// accumulator holds the streaming reduction state for one scenario: counts
// and sums only, no per-fight outcome is retained (spec.md §4.3).
type accumulator struct {
	n              uint64
	wins           uint64
	stalls         uint64
	losses         uint64
	r1Kills        uint64
	hullFracSumWin float64
	damageR1Sum    float64
	roundsSum      uint64
	invalid        uint64
}

// addInvalid records a fight that combat.Simulate aborted as invalid — it
// contributes to InvalidFights but none of the other accumulators (spec.md
// §7: "aggregate counts it under a separate invalid_fights accumulator").
func (a *accumulator) addInvalid() {
	a.invalid++
}

func (a *accumulator) add(win, stall bool, hullFrac float64, rounds int, damageR1 float64) {
	a.n++
	a.roundsSum += uint64(rounds)
	switch {
	case stall:
		a.stalls++
	case win:
		a.wins++
		a.hullFracSumWin += hullFrac
		if rounds == 1 {
			a.r1Kills++
		}
	default:
		a.losses++
	}
	a.damageR1Sum += damageR1
}

// merge combines another accumulator's counters into this one. The
// reduction is commutative and associative, so partial accumulators built
// by independent workers can be merged in any order (spec.md §5 "Ordering
// guarantees").
func (a *accumulator) merge(other *accumulator) {
	a.n += other.n
	a.wins += other.wins
	a.stalls += other.stalls
	a.losses += other.losses
	a.r1Kills += other.r1Kills
	a.hullFracSumWin += other.hullFracSumWin
	a.damageR1Sum += other.damageR1Sum
	a.roundsSum += other.roundsSum
	a.invalid += other.invalid
}

func (a *accumulator) finalize() AggregateStats {
	if a.n == 0 {
		return AggregateStats{InvalidFights: a.invalid}
	}
	n := float64(a.n)
	stats := AggregateStats{
		WinRate:         float64(a.wins) / n,
		StallRate:       float64(a.stalls) / n,
		LossRate:        float64(a.losses) / n,
		R1KillRate:      float64(a.r1Kills) / n,
		AvgDamageRound1: a.damageR1Sum / n,
		AvgRounds:       float64(a.roundsSum) / n,
		N:               a.n,
		InvalidFights:   a.invalid,
	}
	if a.wins > 0 {
		stats.AvgHullFracWhenWinning = a.hullFracSumWin / float64(a.wins)
	}
	stats.WinRate95CI = wilsonInterval(a.wins, a.n)
	return stats
}

// wilsonInterval computes the two-sided 95% Wilson score interval for a
// binomial proportion successes/n, the confidence bound spec.md §3/§6
// requires for win_rate. z is the standard normal critical value for 95%
// confidence (1.959963984540054).
func wilsonInterval(successes, n uint64) [2]float64 {
	if n == 0 {
		return [2]float64{0, 0}
	}
	const z = 1.959963984540054
	nf := float64(n)
	p := float64(successes) / nf
	z2 := z * z

	denom := 1 + z2/nf
	centre := p + z2/(2*nf)
	margin := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))

	lo := (centre - margin) / denom
	hi := (centre + margin) / denom
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	return [2]float64{lo, hi}
}
