package combat

import (
	"math"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

// maxRounds is the round-loop cap spec.md §4.2 imposes to guarantee every
// fight terminates. A fight that reaches it without a hull reaching zero is
// reported as a Stall rather than a Win or a Loss.
const maxRounds = 100

// combatant is one side's mutable per-fight state: its raw stats, compiled
// BuffSet, dynamic-effect runtime, and current hull/shield pools.
type combatant struct {
	raw   DefenderStats
	buffs *lcars.BuffSet
	dyn   []dynState

	hullMax   float64
	shieldMax float64
	hull      float64
	shield    float64

	roundMods map[string]*lcars.StatBucket
}

func newCombatant(s DefenderStats, buffs *lcars.BuffSet) *combatant {
	if buffs == nil {
		buffs = &lcars.BuffSet{}
	}
	c := &combatant{raw: s, buffs: buffs, dyn: newDynStates(buffs)}
	c.hullMax = buffs.Get("hull_hp", s.HullHP)
	c.shieldMax = buffs.Get("shield_hp", s.ShieldHP)
	c.hull = c.hullMax
	c.shield = c.shieldMax
	return c
}

// rawStat resolves a stat key against a DefenderStats record, covering both
// the offense fields it embeds via AttackerStats and its own defense fields.
func rawStat(d *DefenderStats, stat string) float64 {
	switch stat {
	case "armor":
		return d.Armor
	case "shield_deflection":
		return d.ShieldDeflection
	case "dodge":
		return d.Dodge
	case "apex_barrier":
		return d.ApexBarrier
	case "isolytic_defense":
		return d.IsolyticDefense
	default:
		return d.AttackerStats.ToStatSource()[stat]
	}
}

// stat returns the fully-folded value of a stat for the current round:
// static compile-time buckets first, then this round's active dynamic
// modifiers layered on top through the identical StatBucket algebra.
func (c *combatant) stat(name string) float64 {
	base := c.buffs.Get(name, rawStat(&c.raw, name))
	if b, ok := c.roundMods[name]; ok {
		return b.Reduce(base)
	}
	return base
}

func (c *combatant) refreshRoundMods(round int) {
	c.roundMods = foldRoundMods(c.dyn, round)
}

// statForCondition resolves a stat name for Condition evaluation, covering
// everything stat() answers plus two fight-derived fractions no LCARS
// effect can StatModify directly but that HullBreach/low-hull conditions
// commonly threshold against.
func (c *combatant) statForCondition(name string) float64 {
	switch name {
	case "hull_frac":
		if c.hullMax <= 0 {
			return 0
		}
		return c.hull / c.hullMax
	case "shield_frac":
		if c.shieldMax <= 0 {
			return 0
		}
		return c.shield / c.shieldMax
	default:
		return c.stat(name)
	}
}

func (c *combatant) shipClass() ShipClass { return c.raw.ShipClass }

// Simulate runs one deterministic fight to termination (spec.md §4.2). The
// engine itself never fails: every non-finite excursion is reported back as
// an Invalid outcome rather than a panic or error return, since a Monte
// Carlo batch must be able to keep going past a single malformed sample.
func Simulate(attacker, defender DefenderStats, attackerBuffs, defenderBuffs *lcars.BuffSet, seed uint64, trace *Trace) FightOutcome {
	if trace != nil {
		trace.Reset()
	}
	rng := NewPRNG(seed)

	a := newCombatant(attacker, attackerBuffs)
	d := newCombatant(defender, defenderBuffs)

	fireBucket(a.dyn, a.buffs, lcars.TriggerCombatStart, 0, rng, a)
	fireBucket(d.dyn, d.buffs, lcars.TriggerCombatStart, 0, rng, d)

	var totalDamage, round1Damage float64
	var win, stall, invalid bool
	round := 0

	for round = 1; round <= maxRounds; round++ {
		trace.record(Event{Round: round, Kind: EventRoundStart})

		fireBucket(a.dyn, a.buffs, lcars.TriggerRoundStart, round, rng, a)
		fireBucket(d.dyn, d.buffs, lcars.TriggerRoundStart, round, rng, d)
		a.refreshRoundMods(round)
		d.refreshRoundMods(round)

		fireBucket(a.dyn, a.buffs, lcars.TriggerAttack, round, rng, a)

		res := resolveStrike(a, d, rng, trace, round, "attacker", EventAttackerHit)
		totalDamage += res.damage
		if round == 1 {
			round1Damage += res.damage
		}
		fireHitTriggers(a, res, round, rng)

		if extra := bestExtraAttack(a.dyn); extra != nil && rng.NextFloat64() < extra.def.Chance {
			res2 := resolveStrikeMultiplied(a, d, rng, trace, round, "attacker", EventAttackerHit, extra.def.Multiplier)
			totalDamage += res2.damage
			if round == 1 {
				round1Damage += res2.damage
			}
			fireHitTriggers(a, res2, round, rng)
		}

		applyBurningTicks(a, d, round, trace)
		applyBurningTicks(d, a, round, trace)

		if nonFinite(a.hull) || nonFinite(d.hull) {
			invalid = true
			break
		}

		if d.hull <= 0 {
			fireBucket(a.dyn, a.buffs, lcars.TriggerKill, round, rng, a)
			applyOnKillHeal(a, round, trace)
			trace.record(Event{Round: round, Kind: EventKill, Actor: "attacker"})
			win = true
			break
		}

		resBack := resolveStrike(d, a, rng, trace, round, "defender", EventDefenderHit)
		fireHitTriggers(d, resBack, round, rng)
		if nonFinite(a.hull) {
			invalid = true
			break
		}

		if a.hull <= 0 {
			fireBucket(d.dyn, d.buffs, lcars.TriggerKill, round, rng, d)
			applyOnKillHeal(d, round, trace)
			trace.record(Event{Round: round, Kind: EventKill, Actor: "defender"})
			win = false
			break
		}

		if resBack.damage > 0 {
			fireBucket(a.dyn, a.buffs, lcars.TriggerReceiveDamage, round, rng, a)
		}
		if fireBucket(a.dyn, a.buffs, lcars.TriggerHullBreach, round, rng, a) {
			trace.record(Event{Round: round, Kind: EventHullBreach, Actor: "attacker"})
		}

		fireBucket(a.dyn, a.buffs, lcars.TriggerRoundEnd, round, rng, a)
		fireBucket(d.dyn, d.buffs, lcars.TriggerRoundEnd, round, rng, d)
		expireEnd(a.dyn, a, round)
		expireEnd(d.dyn, d, round)
		trace.record(Event{Round: round, Kind: EventRoundEnd})

		if round == maxRounds {
			stall = true
		}
	}

	if round > maxRounds {
		round = maxRounds
		stall = true
	}

	fireBucket(a.dyn, a.buffs, lcars.TriggerCombatEnd, round, rng, a)
	fireBucket(d.dyn, d.buffs, lcars.TriggerCombatEnd, round, rng, d)

	hullFrac := 0.0
	if a.hullMax > 0 {
		hullFrac = a.hull / a.hullMax
	}

	return FightOutcome{
		Win:                   win && !invalid,
		Stall:                 stall && !invalid,
		Invalid:               invalid,
		Rounds:                round,
		AttackerHullRemaining: a.hull,
		AttackerHullFrac:      hullFrac,
		DefenderHullRemaining: d.hull,
		TotalDamageDealt:      totalDamage,
		DamageDealtRound1:     round1Damage,
		Events:                traceEvents(trace),
	}
}

func traceEvents(trace *Trace) []Event {
	if trace == nil {
		return nil
	}
	return trace.Events
}

func nonFinite(x float64) bool { return math.IsNaN(x) || math.IsInf(x, 0) }

// strikeResult carries what a landed strike did, beyond the raw damage
// number, so the caller can gate Hit/Critical/ShieldBreak trigger firing on
// what actually happened this shot (spec.md §4.2 step 4).
type strikeResult struct {
	damage      float64
	crit        bool
	shieldBroke bool
}

// resolveStrike computes and applies one attack from attacker onto
// defender, using the mitigation formula against the defender's current
// defense stats (spec.md §4.2 steps 3-5).
func resolveStrike(attacker, defender *combatant, rng *PRNG, trace *Trace, round int, actor string, kind EventKind) strikeResult {
	return resolveStrikeMultiplied(attacker, defender, rng, trace, round, actor, kind, 1.0)
}

func resolveStrikeMultiplied(attacker, defender *combatant, rng *PRNG, trace *Trace, round int, actor string, kind EventKind, multiplier float64) strikeResult {
	atk := attacker.stat("attack") * multiplier
	critChance := attacker.stat("crit_chance")
	critMult := attacker.stat("crit_damage")
	if critMult == 0 {
		critMult = 1
	}
	armorPierce := attacker.stat("armor_piercing")
	shieldPierce := attacker.stat("shield_piercing")
	accuracy := attacker.stat("accuracy")

	mit := Mitigation(
		DefenseStats{
			Armor:            defender.stat("armor"),
			ShieldDeflection: defender.stat("shield_deflection"),
			Dodge:            defender.stat("dodge"),
			Class:            defender.shipClass(),
		},
		PierceStats{
			ArmorPiercing:  armorPierce,
			ShieldPiercing: shieldPierce,
			Accuracy:       accuracy,
		},
	)

	dmg := atk * (1 - mit)

	crit := critChance > 0 && rng.NextFloat64() < critChance
	if crit {
		dmg *= critMult
	}

	shieldBroke := applyDamage(defender, dmg, round, trace, actor, kind, crit)
	return strikeResult{damage: dmg, crit: crit, shieldBroke: shieldBroke}
}

// applyDamage subtracts dmg from shield first, spilling any overflow onto
// hull once shield is exhausted (spec.md §4.2 step 5). It reports whether
// this hit is the one that dropped the shield to zero.
func applyDamage(target *combatant, dmg float64, round int, trace *Trace, actor string, kind EventKind, crit bool) bool {
	trace.record(Event{Round: round, Kind: kind, Actor: actor, Damage: dmg})
	if crit {
		trace.record(Event{Round: round, Kind: EventCrit, Actor: actor, Damage: dmg})
	}

	shieldBroke := false
	if target.shield > 0 {
		if dmg <= target.shield {
			target.shield -= dmg
			return false
		}
		overflow := dmg - target.shield
		target.shield = 0
		shieldBroke = true
		trace.record(Event{Round: round, Kind: EventShieldBreak, Actor: actor})
		target.hull -= overflow
	} else {
		target.hull -= dmg
	}
	if target.hull < 0 {
		target.hull = 0
	}
	return shieldBroke
}

// fireHitTriggers fires the trigger phases spec.md §4.2 step 4 attaches to
// a landed shot: Hit always, Critical and ShieldBreak when this shot
// produced them. attacker owns the dynamic effects being fired — a
// "reacts to my own crit/hit" ability lives on the side that landed it.
func fireHitTriggers(attacker *combatant, res strikeResult, round int, rng *PRNG) {
	fireBucket(attacker.dyn, attacker.buffs, lcars.TriggerHit, round, rng, attacker)
	if res.crit {
		fireBucket(attacker.dyn, attacker.buffs, lcars.TriggerCritical, round, rng, attacker)
	}
	if res.shieldBroke {
		fireBucket(attacker.dyn, attacker.buffs, lcars.TriggerShieldBreak, round, rng, attacker)
	}
}

// applyOnKillHeal implements the on-kill hull-regen convention: a StatModify
// dynamic effect triggered on Kill targeting the "hull_hp" stat heals the
// killer for Value as a fraction of its own hull max, grounded on
// original_source's OnKillHullRegen mapping.
func applyOnKillHeal(c *combatant, round int, trace *Trace) {
	for i := range c.dyn {
		s := &c.dyn[i]
		if s.def.Kind != lcars.EffectStatModify || s.def.Trigger != lcars.TriggerKill || s.def.Stat != "hull_hp" {
			continue
		}
		heal := c.hullMax * s.def.Value
		c.hull = minF(c.hullMax, c.hull+heal)
		trace.record(Event{Round: round, Kind: EventKill, Damage: heal, Message: "on-kill heal"})
	}
}

// applyBurningTicks resolves owner's active burning-style dynamic effects
// (Stat == "burning") for this round. The struggling ambiguity in spec.md
// §4.2 between "attacker's initial hull" and a defender-side burning
// scenario is resolved by the effect's own Target field: Self burns the
// side that owns the officer who applied it, Enemy burns the other side.
// Burning damage is a fixed 1% of the burned side's initial hull per round
// (spec.md §4.2 step 8, §8 scenario 6) — never the effect's own Value,
// which original_source's Burning{chance, duration_rounds} variant doesn't
// even carry.
func applyBurningTicks(owner, other *combatant, round int, trace *Trace) {
	for i := range owner.dyn {
		s := &owner.dyn[i]
		if !s.active || s.def.Kind != lcars.EffectStatModify || s.def.Stat != "burning" {
			continue
		}
		target := other
		actor := "enemy"
		if s.def.Target == lcars.TargetSelf {
			target = owner
			actor = "self"
		}
		dmg := target.hullMax * 0.01
		target.hull -= dmg
		if target.hull < 0 {
			target.hull = 0
		}
		trace.record(Event{Round: round, Kind: EventBurningTick, Actor: actor, Damage: dmg})
	}
}
