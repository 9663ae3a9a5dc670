package lcars

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlFile mirrors the on-disk LCARS schema: one file per faction, a flat
// list of officers, ability blocks named *_ability, and effects keyed by a
// "type" field. This is decoded and then converted into the package's
// domain types (Officer, Ability, Effect) rather than used directly, so
// the wire schema can evolve independently of the compiler's internals.
type yamlFile struct {
	Officers []yamlOfficer `yaml:"officers"`
}

type yamlOfficer struct {
	ID                string        `yaml:"id"`
	Name              string        `yaml:"name"`
	Faction           string        `yaml:"faction"`
	Rarity            string        `yaml:"rarity"`
	Group             string        `yaml:"group"`
	CaptainAbility    *yamlAbility  `yaml:"captain_ability"`
	BridgeAbility     *yamlAbility  `yaml:"bridge_ability"`
	BelowDecksAbility *yamlAbility  `yaml:"below_decks_ability"`
}

type yamlAbility struct {
	Name    string       `yaml:"name"`
	Effects []yamlEffect `yaml:"effects"`
}

type yamlEffect struct {
	Type       string          `yaml:"type"`
	Stat       string          `yaml:"stat"`
	Target     string          `yaml:"target"`
	Operator   string          `yaml:"operator"`
	Value      *float64        `yaml:"value"`
	Trigger    string          `yaml:"trigger"`
	Duration   yaml.Node       `yaml:"duration"`
	Scaling    *yamlScaling    `yaml:"scaling"`
	Condition  *yamlCondition  `yaml:"condition"`
	Chance     *float64        `yaml:"chance"`
	Multiplier *float64        `yaml:"multiplier"`
	Tag        string          `yaml:"tag"`
	Accumulate *yamlAccumulate `yaml:"accumulate"`
	Decay      *yamlDecay      `yaml:"decay"`
}

type yamlAccumulate struct {
	Type    string   `yaml:"type"`
	Amount  *float64 `yaml:"amount"`
	Ceiling *float64 `yaml:"ceiling"`
}

type yamlDecay struct {
	Type   string   `yaml:"type"`
	Amount *float64 `yaml:"amount"`
	Floor  *float64 `yaml:"floor"`
}

type yamlScaling struct {
	Base    *float64 `yaml:"base"`
	PerRank *float64 `yaml:"per_rank"`
	MaxRank *int     `yaml:"max_rank"`
}

type yamlCondition struct {
	Type        string          `yaml:"type"`
	Stat        string          `yaml:"stat"`
	ThresholdPct *float64       `yaml:"threshold_pct"`
	Min         *int            `yaml:"min"`
	Max         *int            `yaml:"max"`
	Faction     string          `yaml:"faction"`
	Group       string          `yaml:"group"`
	MinMembers  *int            `yaml:"min_members"`
	Tag         string          `yaml:"tag"`
	Conditions  []yamlCondition `yaml:"conditions"`
}

// LoadFile parses a single .lcars.yaml/.lcars.yml file into Officers.
func LoadFile(path string) ([]*Officer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lcars: read %s: %w", path, err)
	}
	var f yamlFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("lcars: parse %s: %w", path, err)
	}
	out := make([]*Officer, 0, len(f.Officers))
	for _, yo := range f.Officers {
		out = append(out, convertOfficer(yo))
	}
	return out, nil
}

// LoadDir loads every *.lcars.yaml/*.lcars.yml file directly inside dir and
// merges their officers. Files that fail to parse are skipped, not fatal —
// the same graceful-degradation policy the compiler applies to unknown
// mechanics (spec.md §9), so one malformed faction file doesn't take down
// roster loading for every other faction.
func LoadDir(dir string) ([]*Officer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lcars: read dir %s: %w", dir, err)
	}
	var officers []*Officer
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".lcars.yaml") && !strings.HasSuffix(name, ".lcars.yml") {
			continue
		}
		loaded, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		officers = append(officers, loaded...)
	}
	return officers, nil
}

func convertOfficer(yo yamlOfficer) *Officer {
	return &Officer{
		ID:         yo.ID,
		Name:       yo.Name,
		Faction:    yo.Faction,
		Rarity:     yo.Rarity,
		Group:      yo.Group,
		Captain:    convertAbility(yo.CaptainAbility),
		Bridge:     convertAbility(yo.BridgeAbility),
		BelowDecks: convertAbility(yo.BelowDecksAbility),
	}
}

func convertAbility(a *yamlAbility) *Ability {
	if a == nil {
		return nil
	}
	out := &Ability{Name: a.Name, Effects: make([]Effect, 0, len(a.Effects))}
	for _, ye := range a.Effects {
		out.Effects = append(out.Effects, convertEffect(ye))
	}
	return out
}

func convertEffect(ye yamlEffect) Effect {
	e := Effect{
		Kind:     EffectKind(ye.Type),
		Stat:     ye.Stat,
		Target:   Target(orDefault(ye.Target, string(TargetSelf))),
		Operator: Operator(ye.Operator),
		Trigger:  Trigger(orDefault(ye.Trigger, string(TriggerPassive))),
	}
	if ye.Value != nil {
		e.Value = *ye.Value
	}
	if ye.Chance != nil {
		e.Chance = *ye.Chance
	}
	if ye.Multiplier != nil {
		e.Multiplier = *ye.Multiplier
	}
	e.Duration = convertDuration(ye.Duration)
	e.Scaling = convertScaling(ye.Scaling)
	e.Condition = convertCondition(ye.Condition)
	e.Decay = convertDecay(ye.Decay)
	e.Accumulate = convertAccumulate(ye.Accumulate)
	return e
}

// convertDuration handles the YAML shape's dual encoding: a bare string
// "permanent" or a map {rounds: N} / {stacks: N}, mirroring the Rust
// prototype's untagged LcarsDuration enum.
func convertDuration(node yaml.Node) *Duration {
	if node.IsZero() {
		return nil
	}
	if node.Kind == yaml.ScalarNode {
		return &Duration{Kind: DurationPermanent}
	}
	if node.Kind == yaml.MappingNode {
		var m map[string]int
		if err := node.Decode(&m); err == nil {
			if r, ok := m["rounds"]; ok {
				return &Duration{Kind: DurationRounds, Rounds: r}
			}
			if s, ok := m["stacks"]; ok {
				return &Duration{Kind: DurationStacks, Stacks: s}
			}
		}
	}
	return nil
}

func convertScaling(s *yamlScaling) *Scaling {
	if s == nil {
		return nil
	}
	out := &Scaling{MaxRank: 5}
	if s.Base != nil {
		out.Base = *s.Base
	}
	if s.PerRank != nil {
		out.PerRank = *s.PerRank
	}
	if s.MaxRank != nil {
		out.MaxRank = *s.MaxRank
	}
	return out
}

func convertDecay(d *yamlDecay) *Decay {
	if d == nil {
		return nil
	}
	out := &Decay{Kind: DecayKind(capitalize(d.Type))}
	if d.Amount != nil {
		out.Amount = *d.Amount
	}
	if d.Floor != nil {
		out.Floor = *d.Floor
	}
	return out
}

func convertAccumulate(a *yamlAccumulate) *Accumulate {
	if a == nil {
		return nil
	}
	out := &Accumulate{Kind: AccumulateKind(capitalize(a.Type))}
	if a.Amount != nil {
		out.Amount = *a.Amount
	}
	if a.Ceiling != nil {
		out.Ceiling = *a.Ceiling
	}
	return out
}

func convertCondition(c *yamlCondition) *Condition {
	if c == nil {
		return nil
	}
	out := &Condition{
		Kind:    ConditionKind(capitalize(c.Type)),
		Stat:    c.Stat,
		Faction: c.Faction,
		Group:   c.Group,
	}
	if c.ThresholdPct != nil {
		out.Threshold = *c.ThresholdPct
	}
	if c.Min != nil {
		out.RoundMin = *c.Min
	}
	if c.Max != nil {
		out.RoundMax = *c.Max
	}
	if c.MinMembers != nil {
		out.MinCount = *c.MinMembers
	}
	for _, child := range c.Conditions {
		out.Children = append(out.Children, *convertCondition(&child))
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
