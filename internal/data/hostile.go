package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
)

// DefaultHostilesIndexPath mirrors original_source's DEFAULT_HOSTILES_INDEX_PATH.
const DefaultHostilesIndexPath = "hostiles/index.json"

// HostileRecord is a normalized hostile combat profile (KOBAYASHI schema).
type HostileRecord struct {
	ID               string  `json:"id"`
	HostileName      string  `json:"hostile_name"`
	Level            int     `json:"level"`
	ShipClass        string  `json:"ship_class"`
	Armor            float64 `json:"armor"`
	ShieldDeflection float64 `json:"shield_deflection"`
	Dodge            float64 `json:"dodge"`
	HullHealth       float64 `json:"hull_health"`
	ShieldHealth     float64 `json:"shield_health"`
	// Hostiles strike back with the same base-combat fields an attacker
	// carries; the normalizer emits these alongside the defense trio so a
	// hostile can occupy either side of combat.Simulate.
	Attack         float64 `json:"attack"`
	ArmorPiercing  float64 `json:"armor_piercing"`
	ShieldPiercing float64 `json:"shield_piercing"`
	Accuracy       float64 `json:"accuracy"`
	CritChance     float64 `json:"crit_chance"`
	CritDamage     float64 `json:"crit_damage"`
}

// HostileIndex resolves hostile ids to display names and levels.
type HostileIndex struct {
	DataVersion string              `json:"data_version,omitempty"`
	SourceNote  string              `json:"source_note,omitempty"`
	Hostiles    []HostileIndexEntry `json:"hostiles"`
}

type HostileIndexEntry struct {
	ID          string `json:"id"`
	HostileName string `json:"hostile_name"`
	Level       int    `json:"level"`
	ShipClass   string `json:"ship_class"`
}

// ToDefenderStats maps the record onto the engine's DefenderStats shape.
// Hostiles resolve with no compiled BuffSet in normal Monte Carlo play
// (spec.md's hostile-AI open question), so DefenderStats is the whole of a
// hostile's fight-time identity.
func (r HostileRecord) ToDefenderStats() combat.DefenderStats {
	return combat.DefenderStats{
		AttackerStats: combat.AttackerStats{
			Attack:         r.Attack,
			HullHP:         r.HullHealth,
			ShieldHP:       r.ShieldHealth,
			ArmorPiercing:  r.ArmorPiercing,
			ShieldPiercing: r.ShieldPiercing,
			Accuracy:       r.Accuracy,
			CritChance:     r.CritChance,
			CritMultiplier: r.CritDamage,
		},
		Armor:            r.Armor,
		ShieldDeflection: r.ShieldDeflection,
		Dodge:            r.Dodge,
		ShipClass:        normalizeShipClass(r.ShipClass),
	}
}

// LoadHostileIndex reads the hostile index file at path.
func LoadHostileIndex(path string) (*HostileIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read hostile index: %w", err)
	}
	var idx HostileIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("data: parse hostile index: %w", err)
	}
	return &idx, nil
}

// LoadHostileRecord reads a single hostile's record from <dataDir>/<id>.json.
func LoadHostileRecord(dataDir, id string) (*HostileRecord, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("data: read hostile record %s: %w", id, err)
	}
	var rec HostileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("data: parse hostile record %s: %w", id, err)
	}
	return &rec, nil
}
