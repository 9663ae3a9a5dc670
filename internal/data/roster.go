package data

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/optimizer"
)

// DefaultOfficersDir mirrors original_source's DEFAULT_CANONICAL_OFFICERS_PATH
// directory convention, but holds the raw LCARS schema files themselves
// (*.lcars.yaml, one per faction) rather than a pre-normalized JSON blob —
// spec.md's "officer definitions ... consumed via a directory of declarative
// files matching the LCARS schema" names this directory as the source of
// truth, so loading goes straight through internal/lcars.LoadDir instead of
// through an intermediate normalizer this repo has no producer for.
const DefaultOfficersDir = "officers"

// LoadOfficerCatalogue reads every *.lcars.yaml/*.lcars.yml file in dir via
// lcars.LoadDir, returning the full compiled-schema officer catalogue
// independent of who owns which officer.
func LoadOfficerCatalogue(dir string) ([]*lcars.Officer, error) {
	officers, err := lcars.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("data: load officer catalogue: %w", err)
	}
	return officers, nil
}

// OwnedOfficer pairs an officer id with a player's ownership state for it —
// the crewed ability rank, the officer's promotion tier, and its numeric
// level — the roster-ownership shape a save file or account export carries
// (spec.md's Roster shape: `{canonical_id, rank, tier, level}`).
type OwnedOfficer struct {
	OfficerID string `json:"canonical_id"`
	Rank      int    `json:"rank"`
	Tier      int    `json:"tier"`
	Level     int    `json:"level"`
}

// LoadOwnedRoster reads a player's owned-officer list from path.
func LoadOwnedRoster(path string) ([]OwnedOfficer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read owned roster: %w", err)
	}
	var owned []OwnedOfficer
	if err := json.Unmarshal(raw, &owned); err != nil {
		return nil, fmt.Errorf("data: parse owned roster: %w", err)
	}
	return owned, nil
}

// ResolveRoster joins a player's owned-officer list against the full
// catalogue, producing the []optimizer.RosterOfficer input the candidate
// generator and genetic search both take. Owned entries naming an unknown
// officer id are skipped rather than failing the whole roster.
func ResolveRoster(catalogue []*lcars.Officer, owned []OwnedOfficer) []optimizer.RosterOfficer {
	byID := make(map[string]*lcars.Officer, len(catalogue))
	for _, o := range catalogue {
		byID[o.ID] = o
	}
	out := make([]optimizer.RosterOfficer, 0, len(owned))
	for _, o := range owned {
		officer, ok := byID[o.OfficerID]
		if !ok {
			continue
		}
		out = append(out, optimizer.RosterOfficer{Officer: officer, Rank: o.Rank, Tier: o.Tier, Level: o.Level})
	}
	return out
}
