package combat

import "github.com/JustinWhittecar/kobayashi/internal/lcars"

// dynState is one dynamic effect's mutable, per-fight runtime state. The
// BuffSet.Dynamic template it points at is immutable and shared across
// fights; only this struct is cloned per fight, as one fixed-size slice.
// The per-round stat buckets derived from it (foldRoundMods) are a fresh
// map allocated every round.
type dynState struct {
	def             *lcars.DynamicEffect
	active          bool
	roundsRemaining int // meaningful only when def.Duration.Kind == DurationRounds
	stacks          int
	startRound      int
}

func newDynStates(bs *lcars.BuffSet) []dynState {
	out := make([]dynState, len(bs.Dynamic))
	for i := range bs.Dynamic {
		out[i].def = &bs.Dynamic[i]
	}
	return out
}

// fireBucket activates every dynamic effect bucketed under trigger, gated
// on its Condition (StatThreshold/RoundRange/And/Or/Not — FactionTag and
// GroupCount are already resolved to constants at compile time). Chance
// effects (morale/assimilated/hull_breach/burning-style triggered states,
// per original_source's lcars/resolver.rs) then roll against the PRNG;
// effects with no configured chance activate unconditionally once their
// condition passes. It reports whether anything actually activated this
// call, which callers use to detect edge-triggered events such as
// HullBreach that have no dedicated trace signal of their own.
func fireBucket(states []dynState, bs *lcars.BuffSet, trigger lcars.Trigger, round int, rng *PRNG, owner *combatant) bool {
	fired := false
	for _, idx := range bs.TriggerBuckets[trigger] {
		s := &states[idx]
		if !s.def.Condition.Eval(owner.statForCondition, round) {
			continue
		}
		if s.def.Duration != nil && s.def.Duration.Kind == lcars.DurationStacks {
			if s.stacks >= maxInt(s.def.Duration.Stacks, 1) {
				continue
			}
			if s.def.Chance > 0 && rng.NextFloat64() >= s.def.Chance {
				continue
			}
			s.stacks++
			if !s.active {
				s.startRound = round
			}
			s.active = true
			fired = true
			continue
		}
		if s.def.Chance > 0 && rng.NextFloat64() >= s.def.Chance {
			continue
		}
		if !s.active {
			s.startRound = round
		}
		s.active = true
		fired = true
		if s.def.Duration != nil && s.def.Duration.Kind == lcars.DurationRounds {
			s.roundsRemaining = s.def.Duration.Rounds
		} else {
			// Permanent, Until (expiry evaluated in expireEnd, not counted
			// down), and Stacks-less activations all just stay up.
			s.roundsRemaining = -1
		}
	}
	return fired
}

// expireEnd runs at RoundEnd (spec.md §4.2 step 8): rounds-remaining
// counters are decremented and cleared at zero, and Until-duration effects
// are cleared the moment their condition evaluates true.
func expireEnd(states []dynState, owner *combatant, round int) {
	for i := range states {
		s := &states[i]
		if !s.active {
			continue
		}
		if s.def.Duration != nil && s.def.Duration.Kind == lcars.DurationUntil {
			if s.def.Duration.Condition.Eval(owner.statForCondition, round) {
				s.active = false
				s.stacks = 0
			}
			continue
		}
		if s.roundsRemaining < 0 {
			continue
		}
		s.roundsRemaining--
		if s.roundsRemaining <= 0 {
			s.active = false
			s.stacks = 0
		}
	}
}

// foldRoundMods computes this round's stacking buckets for every stat
// touched by an active dynamic StatModify effect, reusing the compiler's
// own StatBucket algebra (spec.md §9: reuse the fold, not the lookup).
func foldRoundMods(states []dynState, round int) map[string]*lcars.StatBucket {
	mods := make(map[string]*lcars.StatBucket)
	for i := range states {
		s := &states[i]
		if !s.active || s.def.Kind != lcars.EffectStatModify || s.def.Stat == "" {
			continue
		}
		mag := dynamicMagnitude(s, round)
		b, ok := mods[s.def.Stat]
		if !ok {
			b = &lcars.StatBucket{}
			mods[s.def.Stat] = b
		}
		switch s.def.Operator {
		case lcars.OpAdd:
			b.ApplyAdd(mag)
		case lcars.OpMultiply:
			b.ApplyMultiply(mag)
		case lcars.OpSet:
			b.ApplySet(mag)
		case lcars.OpMin:
			b.ApplyMin(mag)
		case lcars.OpMax:
			b.ApplyMax(mag)
		}
	}
	return mods
}

// dynamicMagnitude resolves a dynamic effect's current-round value,
// applying decay or accumulate curves per spec.md §4.2 step 1.
func dynamicMagnitude(s *dynState, round int) float64 {
	elapsed := round - s.startRound
	if elapsed < 0 {
		elapsed = 0
	}
	base := s.def.Value

	switch {
	case s.def.Decay != nil:
		d := s.def.Decay
		switch d.Kind {
		case lcars.DecayExponential:
			return maxF(d.Floor, base*pow(d.Amount, elapsed))
		default: // Linear
			return maxF(d.Floor, base-d.Amount*float64(elapsed))
		}
	case s.def.Accumulate != nil:
		a := s.def.Accumulate
		switch a.Kind {
		case lcars.AccumulateExponential:
			return minF(a.Ceiling, base*pow(1+a.Amount, elapsed))
		case lcars.AccumulateStep:
			return minF(a.Ceiling, base+a.Amount*float64(s.stacks))
		default: // Linear
			return minF(a.Ceiling, base+a.Amount*float64(elapsed))
		}
	default:
		return base
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func pow(base float64, exp int) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := 0; i < exp; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

// bestExtraAttack picks the currently-active ExtraAttack effect the round
// should roll against: highest chance wins, ties broken by highest
// multiplier (original_source/src/lcars/resolver.rs's proc-selection rule).
// An ExtraAttack only ever reaches active via fireBucket on its own
// Trigger — Passive ones are folded into the CombatStart bucket by
// finalizeTriggerBuckets — so its rounds-remaining counter is honored here
// for free: an expired one is simply no longer active.
func bestExtraAttack(states []dynState) *dynState {
	var best *dynState
	for i := range states {
		s := &states[i]
		if s.def.Kind != lcars.EffectExtraAttack || !s.active {
			continue
		}
		if best == nil || s.def.Chance > best.def.Chance ||
			(s.def.Chance == best.def.Chance && s.def.Multiplier > best.def.Multiplier) {
			best = s
		}
	}
	return best
}
