// Package lcars implements the Ability Compiler: it folds declarative
// officer ability definitions ("LCARS" files) and a player profile into an
// immutable, fight-ready BuffSet.
package lcars

// EffectKind is the closed set of effect shapes an ability can produce.
type EffectKind string

const (
	EffectStatModify  EffectKind = "StatModify"
	EffectExtraAttack EffectKind = "ExtraAttack"
	EffectTag         EffectKind = "Tag"
)

// Target selects who an effect applies to.
type Target string

const (
	TargetSelf       Target = "Self"
	TargetEnemy      Target = "Enemy"
	TargetAllAllies  Target = "AllAllies"
	TargetAllEnemies Target = "AllEnemies"
)

// Operator is how a StatModify effect's value combines into the stacking buckets.
type Operator string

const (
	OpAdd         Operator = "Add"
	OpMultiply    Operator = "Multiply"
	OpSet         Operator = "Set"
	OpMin         Operator = "Min"
	OpMax         Operator = "Max"
	OpAddPctOfMax Operator = "AddPctOfMax"
)

// Trigger is when an effect resolves during a fight.
type Trigger string

const (
	TriggerPassive       Trigger = "Passive"
	TriggerCombatStart   Trigger = "CombatStart"
	TriggerRoundStart    Trigger = "RoundStart"
	TriggerAttack        Trigger = "Attack"
	TriggerHit           Trigger = "Hit"
	TriggerCritical      Trigger = "Critical"
	TriggerShieldBreak   Trigger = "ShieldBreak"
	TriggerHullBreach    Trigger = "HullBreach"
	TriggerKill          Trigger = "Kill"
	TriggerReceiveDamage Trigger = "ReceiveDamage"
	TriggerRoundEnd      Trigger = "RoundEnd"
	TriggerCombatEnd     Trigger = "CombatEnd"
)

// DurationKind tags which of Duration's fields is meaningful.
type DurationKind string

const (
	DurationPermanent DurationKind = "Permanent"
	DurationRounds    DurationKind = "Rounds"
	DurationStacks    DurationKind = "Stacks"
	DurationUntil     DurationKind = "Until"
)

// Duration is a closed variant: exactly one of Rounds/Stacks/Until is
// meaningful depending on Kind.
type Duration struct {
	Kind      DurationKind `yaml:"kind" json:"kind"`
	Rounds    int          `yaml:"rounds,omitempty" json:"rounds,omitempty"`
	Stacks    int          `yaml:"stacks,omitempty" json:"stacks,omitempty"`
	Condition *Condition   `yaml:"until,omitempty" json:"until,omitempty"`
}

// DecayKind selects how a decaying effect's magnitude falls off per round.
type DecayKind string

const (
	DecayLinear      DecayKind = "Linear"
	DecayExponential DecayKind = "Exponential"
)

type Decay struct {
	Kind   DecayKind `yaml:"kind" json:"kind"`
	Amount float64   `yaml:"amount" json:"amount"`
	Floor  float64   `yaml:"floor" json:"floor"`
}

// AccumulateKind selects how an accumulating effect's magnitude grows per round.
type AccumulateKind string

const (
	AccumulateLinear      AccumulateKind = "Linear"
	AccumulateExponential AccumulateKind = "Exponential"
	AccumulateStep        AccumulateKind = "Step"
)

type Accumulate struct {
	Kind    AccumulateKind `yaml:"kind" json:"kind"`
	Amount  float64        `yaml:"amount" json:"amount"`
	Ceiling float64        `yaml:"ceiling" json:"ceiling"`
}

// Scaling resolves an effect's value against an officer's rank at compile time.
type Scaling struct {
	Base    float64 `yaml:"base" json:"base"`
	PerRank float64 `yaml:"per_rank" json:"per_rank"`
	MaxRank int     `yaml:"max_rank" json:"max_rank"`
}

// Resolve computes the scaled value for a given rank, clamped to MaxRank.
func (s Scaling) Resolve(rank int) float64 {
	if s.MaxRank > 0 && rank > s.MaxRank {
		rank = s.MaxRank
	}
	if rank < 1 {
		rank = 1
	}
	return s.Base + float64(rank-1)*s.PerRank
}

// ConditionKind is the closed set of predicate node types over which
// conditions compose.
type ConditionKind string

const (
	CondAnd            ConditionKind = "And"
	CondOr             ConditionKind = "Or"
	CondNot            ConditionKind = "Not"
	CondStatThreshold  ConditionKind = "StatThreshold"
	CondFactionTag     ConditionKind = "FactionTag"
	CondRoundRange     ConditionKind = "RoundRange"
	CondGroupCount     ConditionKind = "GroupCount"
	CondAlwaysTrue     ConditionKind = "AlwaysTrue"
)

// Condition is a recursive predicate tree. Leaf kinds carry their own
// parameters; And/Or/Not recurse into Children.
type Condition struct {
	Kind ConditionKind `yaml:"kind" json:"kind"`

	Children []Condition `yaml:"children,omitempty" json:"children,omitempty"`

	Stat      string  `yaml:"stat,omitempty" json:"stat,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Above     bool    `yaml:"above,omitempty" json:"above,omitempty"`

	Faction string `yaml:"faction,omitempty" json:"faction,omitempty"`

	RoundMin int `yaml:"round_min,omitempty" json:"round_min,omitempty"`
	RoundMax int `yaml:"round_max,omitempty" json:"round_max,omitempty"`

	Group    string `yaml:"group,omitempty" json:"group,omitempty"`
	MinCount int    `yaml:"min_count,omitempty" json:"min_count,omitempty"`
}

// TriviallyTrue reports whether the condition can be decided at compile
// time without any fight state, per the compiler's static/dynamic split.
func (c *Condition) TriviallyTrue() bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case CondAlwaysTrue, "":
		return true
	case CondAnd:
		for i := range c.Children {
			if !c.Children[i].TriviallyTrue() {
				return false
			}
		}
		return true
	case CondOr:
		for i := range c.Children {
			if c.Children[i].TriviallyTrue() {
				return true
			}
		}
		return len(c.Children) == 0
	default:
		return false
	}
}

// Eval evaluates the condition against live fight state: statValue resolves
// a stat name (including derived names such as "hull_frac"/"shield_frac")
// to its current value, and round is the current round number (1-indexed).
// FactionTag and GroupCount nodes must already have been resolved to a
// constant by SpecializeCondition before Eval ever sees them, since crew
// composition isn't something fight state can answer; an unspecialized one
// found here evaluates to false rather than panicking.
func (c *Condition) Eval(statValue func(string) float64, round int) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case CondAlwaysTrue, "":
		return true
	case CondAnd:
		for i := range c.Children {
			if !c.Children[i].Eval(statValue, round) {
				return false
			}
		}
		return true
	case CondOr:
		for i := range c.Children {
			if c.Children[i].Eval(statValue, round) {
				return true
			}
		}
		return len(c.Children) == 0
	case CondNot:
		if len(c.Children) == 0 {
			return true
		}
		return !c.Children[0].Eval(statValue, round)
	case CondStatThreshold:
		v := statValue(c.Stat)
		if c.Above {
			return v > c.Threshold
		}
		return v < c.Threshold
	case CondRoundRange:
		if c.RoundMin > 0 && round < c.RoundMin {
			return false
		}
		if c.RoundMax > 0 && round > c.RoundMax {
			return false
		}
		return true
	default:
		return false
	}
}

// SpecializeCondition partially evaluates c against a crew's fixed
// composition, folding FactionTag and GroupCount leaves — which can never
// change over the course of a fight — into constants. Everything Eval sees
// at runtime is then genuinely time-varying (StatThreshold, RoundRange).
func SpecializeCondition(c *Condition, crew *Crew) *Condition {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case CondFactionTag:
		return boolCondition(crewHasFaction(crew, c.Faction))
	case CondGroupCount:
		return boolCondition(crewGroupCount(crew, c.Group) >= c.MinCount)
	case CondAnd, CondOr:
		children := make([]Condition, len(c.Children))
		for i := range c.Children {
			children[i] = *SpecializeCondition(&c.Children[i], crew)
		}
		return &Condition{Kind: c.Kind, Children: children}
	case CondNot:
		if len(c.Children) == 0 {
			return c
		}
		return &Condition{Kind: CondNot, Children: []Condition{*SpecializeCondition(&c.Children[0], crew)}}
	default:
		return c
	}
}

func boolCondition(v bool) *Condition {
	if v {
		return &Condition{Kind: CondAlwaysTrue}
	}
	return &Condition{Kind: CondNot, Children: []Condition{{Kind: CondAlwaysTrue}}}
}

func crewHasFaction(crew *Crew, faction string) bool {
	for _, a := range crew.AllSeats() {
		if a.Officer != nil && a.Officer.Faction == faction {
			return true
		}
	}
	return false
}

func crewGroupCount(crew *Crew, group string) int {
	n := 0
	for _, a := range crew.AllSeats() {
		if a.Officer != nil && a.Officer.Group == group {
			n++
		}
	}
	return n
}

// Effect is one entry in an ability's ordered effect list.
type Effect struct {
	Kind      EffectKind `yaml:"kind" json:"kind"`
	Stat      string     `yaml:"stat,omitempty" json:"stat,omitempty"`
	Target    Target     `yaml:"target" json:"target"`
	Operator  Operator   `yaml:"operator,omitempty" json:"operator,omitempty"`
	Trigger   Trigger    `yaml:"trigger" json:"trigger"`
	Value     float64    `yaml:"value" json:"value"`
	Chance    float64    `yaml:"chance,omitempty" json:"chance,omitempty"`
	Multiplier float64   `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`

	Duration   *Duration   `yaml:"duration,omitempty" json:"duration,omitempty"`
	Decay      *Decay      `yaml:"decay,omitempty" json:"decay,omitempty"`
	Accumulate *Accumulate `yaml:"accumulate,omitempty" json:"accumulate,omitempty"`
	Scaling    *Scaling    `yaml:"scaling,omitempty" json:"scaling,omitempty"`
	Condition  *Condition  `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// IsStatic reports whether e can be folded into the BuffSet's static
// contributions at compile time (spec.md §4.1 step 2).
func (e *Effect) IsStatic() bool {
	if e.Kind != EffectStatModify {
		return false
	}
	if e.Trigger != TriggerPassive {
		return false
	}
	if e.Decay != nil || e.Accumulate != nil {
		return false
	}
	if e.Duration != nil && e.Duration.Kind != DurationPermanent {
		return false
	}
	if !e.Condition.TriviallyTrue() {
		return false
	}
	return true
}

// Ability is a named, ordered list of effects assigned to one seat.
type Ability struct {
	Name    string   `yaml:"name" json:"name"`
	Effects []Effect `yaml:"effects" json:"effects"`
}

// Officer is one LCARS-defined crew member. Any of the three ability slots
// may be absent (nil).
type Officer struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Faction string   `yaml:"faction" json:"faction"`
	Rarity  string   `yaml:"rarity" json:"rarity"`
	Group   string   `yaml:"group,omitempty" json:"group,omitempty"`

	Captain    *Ability `yaml:"captain,omitempty" json:"captain,omitempty"`
	Bridge     *Ability `yaml:"bridge,omitempty" json:"bridge,omitempty"`
	BelowDecks *Ability `yaml:"below_decks,omitempty" json:"below_decks,omitempty"`
}

// HasCaptainAbility reports captain-seat eligibility (pruning rule 1).
func (o *Officer) HasCaptainAbility() bool { return o.Captain != nil }

// HasBelowDecksAbility reports below-decks-seat eligibility filtering.
func (o *Officer) HasBelowDecksAbility() bool { return o.BelowDecks != nil }

// Seat identifies which ability slot an assignment activates.
type Seat string

const (
	SeatCaptain    Seat = "captain"
	SeatBridge     Seat = "bridge"
	SeatBelowDecks Seat = "below_decks"
)

// OfficerAssignment pairs an officer with the rank it is crewed at and the
// seat it occupies, which determines which of its three abilities is active.
type OfficerAssignment struct {
	Officer *Officer
	Seat    Seat
	Rank    int
}

// Crew is a full ten-seat assignment: one captain, two bridge, and one to
// seven below-decks officers, all required to be distinct.
type Crew struct {
	Captain    OfficerAssignment
	Bridge     [2]OfficerAssignment
	BelowDecks []OfficerAssignment
}

// AllSeats returns every seat assignment in stable seat order (captain,
// bridge in order, below-decks in slot order) — the order the compiler
// folds officers in, which matters for Set-wins tie-breaking.
func (c *Crew) AllSeats() []OfficerAssignment {
	out := make([]OfficerAssignment, 0, 3+len(c.BelowDecks))
	out = append(out, c.Captain, c.Bridge[0], c.Bridge[1])
	out = append(out, c.BelowDecks...)
	return out
}

// Validate reports whether all ten (or fewer, down to four) officers in
// the crew are distinct and below-decks count is in [1, 7].
func (c *Crew) Validate() error {
	if len(c.BelowDecks) < 1 || len(c.BelowDecks) > 7 {
		return ErrInvalidBelowDecksCount
	}
	seen := make(map[string]bool, 3+len(c.BelowDecks))
	for _, a := range c.AllSeats() {
		if a.Officer == nil {
			return ErrMissingOfficer
		}
		if seen[a.Officer.ID] {
			return ErrDuplicateOfficer
		}
		seen[a.Officer.ID] = true
	}
	return nil
}

// abilityFor returns the ability active for this assignment's seat, or nil.
func (a *OfficerAssignment) abilityFor() *Ability {
	switch a.Seat {
	case SeatCaptain:
		return a.Officer.Captain
	case SeatBridge:
		return a.Officer.Bridge
	case SeatBelowDecks:
		return a.Officer.BelowDecks
	default:
		return nil
	}
}
