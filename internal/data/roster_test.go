package data

import (
	"os"
	"path/filepath"
	"testing"
)

const fixtureLcars = `officers:
  - id: kirk
    name: James T. Kirk
    faction: federation
    rarity: legendary
    captain_ability:
      name: Command Presence
      effects:
        - type: StatModify
          stat: attack
          operator: Multiply
          value: 1.5
`

func TestLoadOfficerCatalogueReadsLcarsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "federation.lcars.yaml"), []byte(fixtureLcars), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	officers, err := LoadOfficerCatalogue(dir)
	if err != nil {
		t.Fatalf("LoadOfficerCatalogue returned error: %v", err)
	}
	if len(officers) != 1 || officers[0].ID != "kirk" {
		t.Fatalf("officers = %+v, want one officer with id kirk", officers)
	}
}

func TestResolveRosterCarriesTierAndLevel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "federation.lcars.yaml"), []byte(fixtureLcars), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	catalogue, err := LoadOfficerCatalogue(dir)
	if err != nil {
		t.Fatalf("LoadOfficerCatalogue: %v", err)
	}

	owned := []OwnedOfficer{{OfficerID: "kirk", Rank: 3, Tier: 5, Level: 42}}
	roster := ResolveRoster(catalogue, owned)
	if len(roster) != 1 {
		t.Fatalf("roster length = %d, want 1", len(roster))
	}
	got := roster[0]
	if got.Rank != 3 || got.Tier != 5 || got.Level != 42 {
		t.Errorf("roster[0] = %+v, want Rank=3 Tier=5 Level=42", got)
	}

	unknownOwned := []OwnedOfficer{{OfficerID: "spock", Rank: 1}}
	if got := ResolveRoster(catalogue, unknownOwned); len(got) != 0 {
		t.Errorf("unknown officer id should be skipped, got %d entries", len(got))
	}
}
