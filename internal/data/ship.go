// Package data loads the normalized JSON records the compiler and engine
// operate on: ship and hostile combat stats, the owned-officer roster, and
// the player profile bonus layer (SPEC_FULL.md §6); officer definitions
// come from LCARS YAML through lcars.LoadDir (roster.go). Records are written by an
// out-of-band normalizer and loaded read-only at runtime, grounded on
// original_source/src/data/{ship,hostile,officer,profile}.rs.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
)

// DefaultShipsIndexPath is where the ship index is expected relative to the
// data root, mirroring original_source's DEFAULT_SHIPS_INDEX_PATH.
const DefaultShipsIndexPath = "ships/index.json"

// ShipRecord is a normalized player-ship combat profile for one chosen
// tier/level, as written by the normalizer (KOBAYASHI schema).
type ShipRecord struct {
	ID             string  `json:"id"`
	ShipName       string  `json:"ship_name"`
	ShipClassRaw   string  `json:"ship_class"`
	ArmorPiercing  float64 `json:"armor_piercing"`
	ShieldPiercing float64 `json:"shield_piercing"`
	Accuracy       float64 `json:"accuracy"`
	Attack         float64 `json:"attack"`
	CritChance     float64 `json:"crit_chance"`
	CritDamage     float64 `json:"crit_damage"`
	HullHealth     float64 `json:"hull_health"`
	ShieldHealth   float64 `json:"shield_health"`
	// ApexShred is stored as a decimal fraction (1.0 = 100%).
	ApexShred float64 `json:"apex_shred"`
}

// ShipIndex resolves ship ids to display names for lookup UIs, and carries
// the normalizer's data_version stamp.
type ShipIndex struct {
	DataVersion string           `json:"data_version,omitempty"`
	SourceNote  string           `json:"source_note,omitempty"`
	Ships       []ShipIndexEntry `json:"ships"`
}

type ShipIndexEntry struct {
	ID        string `json:"id"`
	ShipName  string `json:"ship_name"`
	ShipClass string `json:"ship_class"`
}

// ToAttackerStats maps the record onto the engine's AttackerStats shape.
func (r ShipRecord) ToAttackerStats() combat.AttackerStats {
	return combat.AttackerStats{
		Attack:         r.Attack,
		HullHP:         r.HullHealth,
		ShieldHP:       r.ShieldHealth,
		ArmorPiercing:  r.ArmorPiercing,
		ShieldPiercing: r.ShieldPiercing,
		Accuracy:       r.Accuracy,
		CritChance:     r.CritChance,
		CritMultiplier: r.CritDamage,
		ApexShred:      r.ApexShred,
	}
}

// ToDefenderStats wraps ToAttackerStats into the DefenderStats shape
// combat.Simulate takes on both sides of a fight (spec.md §4.2's engine is
// symmetric at the type level even though a ship record itself carries no
// armor/shield_deflection/dodge — those default to zero unless an
// officer's BuffSet contributes them, per spec.md §3's pinned Ship record
// fields).
func (r ShipRecord) ToDefenderStats() combat.DefenderStats {
	return combat.DefenderStats{
		AttackerStats: r.ToAttackerStats(),
		ShipClass:     r.ShipClass(),
	}
}

// ShipClass maps the record's free-text class onto combat.ShipClass,
// defaulting to Battleship for unrecognized values, grounded on
// original_source's ship_class_to_type fallback.
func (r ShipRecord) ShipClass() combat.ShipClass {
	return normalizeShipClass(r.ShipClassRaw)
}

func normalizeShipClass(raw string) combat.ShipClass {
	switch raw {
	case "Survey", "survey":
		return combat.ClassSurvey
	case "Explorer", "explorer":
		return combat.ClassExplorer
	case "Interceptor", "interceptor":
		return combat.ClassInterceptor
	case "Armada", "armada":
		return combat.ClassArmada
	case "Battleship", "battleship":
		return combat.ClassBattleship
	default:
		return combat.ClassBattleship
	}
}

// LoadShipIndex reads the ship index file at path.
func LoadShipIndex(path string) (*ShipIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read ship index: %w", err)
	}
	var idx ShipIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("data: parse ship index: %w", err)
	}
	return &idx, nil
}

// LoadShipRecord reads a single ship's full record from <dataDir>/<id>.json.
func LoadShipRecord(dataDir, id string) (*ShipRecord, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("data: read ship record %s: %w", id, err)
	}
	var rec ShipRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("data: parse ship record %s: %w", id, err)
	}
	return &rec, nil
}
