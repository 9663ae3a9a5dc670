package combat

import (
	"testing"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

func TestExtraAttackStopsProcingAfterDurationExpires(t *testing.T) {
	extra := lcars.DynamicEffect{
		Kind:       lcars.EffectExtraAttack,
		Target:     lcars.TargetEnemy,
		Trigger:    lcars.TriggerCombatStart,
		Chance:     1.0,
		Multiplier: 1.0,
		Duration:   &lcars.Duration{Kind: lcars.DurationRounds, Rounds: 3},
	}
	buffs := &lcars.BuffSet{Dynamic: []lcars.DynamicEffect{extra}}
	buffs.TriggerBuckets = map[lcars.Trigger][]int{lcars.TriggerCombatStart: {0}}

	// The extra attack is Passive-remapped to CombatStart, active for exactly
	// 3 rounds; after round 3 bestExtraAttack must stop returning it.
	states := newDynStates(buffs)
	fireBucket(states, buffs, lcars.TriggerCombatStart, 0, NewPRNG(1), &combatant{})
	if bestExtraAttack(states) == nil {
		t.Fatal("expected the extra attack to be active immediately after CombatStart")
	}
	expireEnd(states, &combatant{}, 1)
	expireEnd(states, &combatant{}, 2)
	if bestExtraAttack(states) == nil {
		t.Fatal("expected the extra attack to still be active during its 3rd round")
	}
	expireEnd(states, &combatant{}, 3)
	if bestExtraAttack(states) != nil {
		t.Error("expected the extra attack to have expired after its 3-round duration")
	}
}

func TestFireBucketGatesOnCondition(t *testing.T) {
	gated := lcars.DynamicEffect{
		Kind:      lcars.EffectStatModify,
		Stat:      "attack",
		Operator:  lcars.OpAdd,
		Target:    lcars.TargetSelf,
		Trigger:   lcars.TriggerRoundStart,
		Value:     100,
		Condition: &lcars.Condition{Kind: lcars.CondStatThreshold, Stat: "hull_frac", Threshold: 0.5, Above: false},
	}
	buffs := &lcars.BuffSet{Dynamic: []lcars.DynamicEffect{gated}}
	buffs.TriggerBuckets = map[lcars.Trigger][]int{lcars.TriggerRoundStart: {0}}
	states := newDynStates(buffs)

	full := &combatant{hull: 100, hullMax: 100}
	if fired := fireBucket(states, buffs, lcars.TriggerRoundStart, 1, NewPRNG(1), full); fired {
		t.Error("expected the condition to block activation at full hull")
	}
	if states[0].active {
		t.Error("effect should not be active when its condition is false")
	}

	wounded := &combatant{hull: 10, hullMax: 100}
	if fired := fireBucket(states, buffs, lcars.TriggerRoundStart, 2, NewPRNG(1), wounded); !fired {
		t.Error("expected the condition to allow activation below the threshold")
	}
	if !states[0].active {
		t.Error("effect should be active once its condition holds")
	}
}

func TestExpireEndClearsDurationUntilWhenConditionBecomesTrue(t *testing.T) {
	untilShieldGone := lcars.DynamicEffect{
		Kind:    lcars.EffectStatModify,
		Stat:    "attack",
		Trigger: lcars.TriggerCombatStart,
		Value:   50,
		Duration: &lcars.Duration{
			Kind:      lcars.DurationUntil,
			Condition: &lcars.Condition{Kind: lcars.CondStatThreshold, Stat: "shield_frac", Threshold: 0.01, Above: false},
		},
	}
	buffs := &lcars.BuffSet{Dynamic: []lcars.DynamicEffect{untilShieldGone}}
	buffs.TriggerBuckets = map[lcars.Trigger][]int{lcars.TriggerCombatStart: {0}}
	states := newDynStates(buffs)

	shieldUp := &combatant{shield: 100, shieldMax: 100}
	fireBucket(states, buffs, lcars.TriggerCombatStart, 0, NewPRNG(1), shieldUp)
	if !states[0].active {
		t.Fatal("expected the effect to activate at CombatStart")
	}

	expireEnd(states, shieldUp, 1)
	if !states[0].active {
		t.Error("effect should remain active while shield_frac > 0")
	}

	shieldDown := &combatant{shield: 0, shieldMax: 100}
	expireEnd(states, shieldDown, 2)
	if states[0].active {
		t.Error("expected the effect to expire once shield_frac reached its threshold")
	}
}
