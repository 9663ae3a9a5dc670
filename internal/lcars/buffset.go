package lcars

import "math"

// Epsilon guards piercing denominators against division by zero (spec.md §3).
const Epsilon = 1e-9

// StatBucket accumulates one stat's static contributions using the
// canonical stacking rule `effective = Base * (1 + ModifierAdd) + FlatAdd`,
// with Min/Max applied as post-reduction caps.
//
// HasBase/Base implement the Set operator: when set, Base overrides the
// combatant's raw stat entirely rather than modifying it. Per the frozen
// resolution of spec.md §9's open question, a later Set collapses whatever
// ModifierAdd/FlatAdd had already accumulated for that stat — see ApplySet.
type StatBucket struct {
	HasBase     bool
	Base        float64
	ModifierAdd float64
	FlatAdd     float64
	HasMin      bool
	Min         float64
	HasMax      bool
	Max         float64
}

// Reduce folds rawBase (the combatant's own stat value) through the bucket.
func (b *StatBucket) Reduce(rawBase float64) float64 {
	base := rawBase
	if b.HasBase {
		base = b.Base
	}
	effective := base*(1+b.ModifierAdd) + b.FlatAdd
	if b.HasMin && effective < b.Min {
		effective = b.Min
	}
	if b.HasMax && effective > b.Max {
		effective = b.Max
	}
	return effective
}

// ApplyAdd folds an Add-operator contribution into the Flat bucket.
func (b *StatBucket) ApplyAdd(value float64) { b.FlatAdd += value }

// ApplyMultiply folds a Multiply-operator contribution into the Modifier bucket.
func (b *StatBucket) ApplyMultiply(value float64) { b.ModifierAdd += value - 1.0 }

// ApplySet overrides the running base and discards prior Modifier/Flat
// accumulation for this stat — later contributions still fold onto the
// fresh base normally.
func (b *StatBucket) ApplySet(value float64) {
	b.HasBase = true
	b.Base = value
	b.ModifierAdd = 0
	b.FlatAdd = 0
}

func (b *StatBucket) ApplyMin(value float64) {
	if !b.HasMin || value > b.Min {
		b.HasMin = true
		b.Min = value
	}
}

func (b *StatBucket) ApplyMax(value float64) {
	if !b.HasMax || value < b.Max {
		b.HasMax = true
		b.Max = value
	}
}

// ApplyAddPctOfMax folds a percent-of-max contribution as a flat add.
func (b *StatBucket) ApplyAddPctOfMax(pct, statMax float64) { b.FlatAdd += pct * statMax }

// DynamicEffect is a per-round or trigger-driven effect that cannot be
// folded into static stat buckets at compile time.
type DynamicEffect struct {
	Kind            EffectKind
	SourceOfficerID string
	Stat            string
	Target          Target
	Operator        Operator
	Trigger         Trigger
	Value           float64
	Chance          float64
	Multiplier      float64
	Duration        *Duration
	Decay           *Decay
	Accumulate      *Accumulate
	// Condition gates activation on live fight state (StatThreshold,
	// RoundRange, ...); FactionTag/GroupCount nodes have already been
	// resolved to constants by SpecializeCondition at compile time. Nil
	// (or an AlwaysTrue tree) means the effect fires unconditionally
	// whenever its Trigger fires.
	Condition *Condition
}

// BuffSet is the immutable, fight-ready compiled output of the Ability
// Compiler. It is shared read-only across all fights and worker threads in
// a Monte Carlo batch.
type BuffSet struct {
	Static  map[string]*StatBucket
	Dynamic []DynamicEffect

	// TriggerBuckets maps each trigger to the indices in Dynamic that fire
	// on it, computed once at compile time so the engine never does a
	// dynamic lookup in its hot path (spec.md §9 "Trigger dispatch").
	TriggerBuckets map[Trigger][]int

	Warnings []CompileWarning
}

// Bucket returns (creating if necessary) the stacking bucket for stat. It
// is exported so the combat engine can fold per-round dynamic-effect
// contributions through the identical stacking algebra used at compile
// time (spec.md §9's "no dynamic lookup in the hot path" note applies to
// trigger dispatch, not to reuse of this reduction).
func (bs *BuffSet) Bucket(stat string) *StatBucket {
	if bs.Static == nil {
		bs.Static = make(map[string]*StatBucket)
	}
	b, ok := bs.Static[stat]
	if !ok {
		b = &StatBucket{}
		bs.Static[stat] = b
	}
	return b
}

// Get returns the folded value of stat given the combatant's raw stat
// value, or rawBase unchanged if no contribution touched that stat.
func (bs *BuffSet) Get(stat string, rawBase float64) float64 {
	b, ok := bs.Static[stat]
	if !ok {
		return rawBase
	}
	return b.Reduce(rawBase)
}

// ClampPiercing enforces the ε-floor spec.md §3 requires on piercing stats
// so mitigation math is never divided by zero.
func ClampPiercing(x float64) float64 {
	return math.Max(Epsilon, x)
}

// finalizeTriggerBuckets groups Dynamic effect indices by the trigger phase
// the engine calls fireBucket with. Passive effects have no dedicated
// trigger phase of their own — they remain up for the whole fight once
// activated — so they're folded into the CombatStart bucket, the first
// phase every fight runs, which gives them the same activate/duration/
// expire lifecycle as every other dynamic effect instead of needing special
// casing in the hot path.
func finalizeTriggerBuckets(bs *BuffSet) {
	bs.TriggerBuckets = make(map[Trigger][]int, len(bs.Dynamic))
	for i := range bs.Dynamic {
		t := bs.Dynamic[i].Trigger
		if t == TriggerPassive {
			t = TriggerCombatStart
		}
		bs.TriggerBuckets[t] = append(bs.TriggerBuckets[t], i)
	}
}
