package lcars

import "math"

// CompileOptions carries compile-time overrides (spec.md §9 "typed option
// records"). Strict rejects a crew outright on any UnknownMechanic warning
// instead of the default graceful-skip behavior; it exists for test and
// data-validation tooling, not for the normal fight path.
type CompileOptions struct {
	Strict bool
}

// StatSource is the subset of a ship/hostile record the compiler needs to
// resolve AddPctOfMax against the combatant's own stat maxima and to seed
// the player-profile fold-in. Callers pass the raw record's fields keyed
// the same way LCARS effects name stats (see internal/combat for the
// canonical stat key list consumed at fight time).
type StatSource map[string]float64

// Profile is a flat stat-key to additive-multiplier mapping (spec.md §3
// "Player profile"). Unknown keys are recorded as warnings and ignored.
type Profile struct {
	Bonuses map[string]float64 `json:"bonuses"`
}

// Compile deterministically folds crew, the combatant's own stat source,
// and the player profile into an immutable BuffSet. On structurally
// invalid officer definitions it returns a *CompileError identifying the
// offending officer/seat; unknown effect kinds, unknown operators and
// unknown profile keys are recorded as warnings on the returned BuffSet and
// skipped, failing the compile only under opts.Strict. The stat keys that
// effects name are not checked: an effect on a stat the engine never reads
// compiles like any other and has no effect in a fight.
func Compile(crew *Crew, base StatSource, profile Profile, opts CompileOptions) (*BuffSet, error) {
	if err := crew.Validate(); err != nil {
		return nil, err
	}

	bs := &BuffSet{Static: make(map[string]*StatBucket)}

	for _, seat := range crew.AllSeats() {
		ability := seat.abilityFor()
		if ability == nil {
			continue
		}
		for i := range ability.Effects {
			eff := &ability.Effects[i]
			if err := foldEffect(bs, crew, seat, eff, base, opts); err != nil {
				return nil, &CompileError{OfficerID: seat.Officer.ID, Seat: seat.Seat, Err: err}
			}
		}
	}

	applyProfile(bs, profile)
	finalizeTriggerBuckets(bs)
	return bs, nil
}

func foldEffect(bs *BuffSet, crew *Crew, seat OfficerAssignment, eff *Effect, base StatSource, opts CompileOptions) error {
	value := eff.Value
	if eff.Scaling != nil {
		if err := validateScaling(*eff.Scaling); err != nil {
			return err
		}
		value = eff.Scaling.Resolve(seat.Rank)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrNonFiniteValue
	}

	switch eff.Kind {
	case EffectStatModify:
		if !eff.IsStatic() {
			bs.Dynamic = append(bs.Dynamic, DynamicEffect{
				Kind:            EffectStatModify,
				SourceOfficerID: seat.Officer.ID,
				Stat:            eff.Stat,
				Target:          eff.Target,
				Operator:        eff.Operator,
				Trigger:         eff.Trigger,
				Value:           value,
				Chance:          eff.Chance,
				Multiplier:      eff.Multiplier,
				Duration:        specializeDuration(eff.Duration, crew),
				Decay:           eff.Decay,
				Accumulate:      eff.Accumulate,
				Condition:       SpecializeCondition(eff.Condition, crew),
			})
			return nil
		}
		return foldStatic(bs, eff.Stat, eff.Operator, value, base, opts)

	case EffectExtraAttack:
		bs.Dynamic = append(bs.Dynamic, DynamicEffect{
			Kind:            EffectExtraAttack,
			SourceOfficerID: seat.Officer.ID,
			Target:          eff.Target,
			Trigger:         eff.Trigger,
			Chance:          eff.Chance,
			Multiplier:      eff.Multiplier,
			Duration:        specializeDuration(eff.Duration, crew),
			Condition:       SpecializeCondition(eff.Condition, crew),
		})
		return nil

	case EffectTag:
		return nil // tags carry no combat semantics; recorded nowhere

	default:
		bs.Warnings = append(bs.Warnings, CompileWarning{
			OfficerID: seat.Officer.ID, Seat: seat.Seat, Reason: "unknown effect kind: " + string(eff.Kind),
		})
		if opts.Strict {
			return ErrConditionEvalFailure
		}
		return nil
	}
}

func foldStatic(bs *BuffSet, stat string, op Operator, value float64, base StatSource, opts CompileOptions) error {
	b := bs.Bucket(stat)
	switch op {
	case OpAdd:
		b.ApplyAdd(value)
	case OpMultiply:
		b.ApplyMultiply(value)
	case OpSet:
		b.ApplySet(value)
	case OpMin:
		b.ApplyMin(value)
	case OpMax:
		b.ApplyMax(value)
	case OpAddPctOfMax:
		b.ApplyAddPctOfMax(value, base[stat])
	default:
		bs.Warnings = append(bs.Warnings, CompileWarning{Stat: stat, Reason: "unknown operator: " + string(op)})
		if opts.Strict {
			return ErrConditionEvalFailure
		}
	}
	return nil
}

// specializeDuration resolves a Duration's Until condition against the
// crew at compile time, the same partial evaluation SpecializeCondition
// gives every other condition tree. A nil Duration passes through nil.
func specializeDuration(d *Duration, crew *Crew) *Duration {
	if d == nil || d.Kind != DurationUntil {
		return d
	}
	specialized := *d
	specialized.Condition = SpecializeCondition(d.Condition, crew)
	return &specialized
}

func validateScaling(s Scaling) error {
	if math.IsNaN(s.Base) || math.IsInf(s.Base, 0) || math.IsNaN(s.PerRank) || math.IsInf(s.PerRank, 0) {
		return ErrInvalidScaling
	}
	if s.MaxRank < 0 {
		return ErrInvalidScaling
	}
	return nil
}

// applyProfile folds the player-profile additive layer into the same
// pre-reduction buckets a Multiply effect would use (spec.md §4.1 step 4):
// "weapon_damage" folds into ModifierAdd for the "attack" stat, and other
// profile keys fold into ModifierAdd for their identically-named stat.
func applyProfile(bs *BuffSet, profile Profile) {
	for key, bonus := range profile.Bonuses {
		if bonus == 0 {
			continue
		}
		stat := profileKeyToStat(key)
		if stat == "" {
			bs.Warnings = append(bs.Warnings, CompileWarning{Stat: key, Reason: "unknown profile stat key"})
			continue
		}
		bs.Bucket(stat).ModifierAdd += bonus
	}
}

// profileKeyToStat maps profile bonus keys onto the engine's stat key
// vocabulary; most are identity mappings, weapon_damage is the one
// well-known rename called out by spec.md §4.2.
func profileKeyToStat(key string) string {
	switch key {
	case "weapon_damage":
		return "attack"
	case "hull_hp", "shield_hp", "crit_chance", "crit_damage", "pierce",
		"shield_mitigation", "armor_piercing", "shield_piercing", "accuracy",
		"isolytic_damage", "isolytic_defense", "apex_shred", "apex_barrier":
		return key
	default:
		return ""
	}
}
