// Command simulate runs a single deterministic fight or a Monte Carlo batch
// for one ship/hostile/crew scenario read from the on-disk data catalogue,
// the CLI-driven twin of cmd/calc-cr-v2/main.go's flag.String/flag.Int
// block retargeted from mech combat-rating batches to KOBAYASHI fights.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
	"github.com/JustinWhittecar/kobayashi/internal/config"
	"github.com/JustinWhittecar/kobayashi/internal/data"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/montecarlo"
)

func main() {
	paths := config.DefaultDataPaths()
	paths.RegisterFlags(flag.CommandLine)

	shipID := flag.String("ship", "", "ship record id")
	hostileID := flag.String("hostile", "", "hostile record id")
	captainID := flag.String("captain", "", "captain officer id")
	bridgeIDs := flag.String("bridge", "", "comma-separated pair of bridge officer ids")
	belowDecksIDs := flag.String("below-decks", "", "comma-separated below-decks officer ids")
	rank := flag.Int("rank", 1, "crewed rank applied to every assigned officer")
	seed := flag.Uint64("seed", 42, "PRNG seed for a single fight")
	sampleCount := flag.Uint64("samples", 0, "run a Monte Carlo batch of this many fights instead of one")
	workers := flag.Int("workers", 0, "worker count override (0 = runtime.NumCPU())")
	traceOut := flag.String("trace-out", "", "write the single-fight round trace as JSON to this file")
	flag.Parse()

	if *shipID == "" || *hostileID == "" {
		log.Fatal("usage: simulate --ship <id> --hostile <id> [--captain <id> --bridge <id1,id2>] [--samples N]")
	}

	shipRec, err := data.LoadShipRecord(paths.ShipsDir, *shipID)
	if err != nil {
		log.Fatalf("load ship: %v", err)
	}
	hostileRec, err := data.LoadHostileRecord(paths.HostilesDir, *hostileID)
	if err != nil {
		log.Fatalf("load hostile: %v", err)
	}

	profile := data.LoadProfile(paths.ProfilePath)

	attacker := shipRec.ToDefenderStats()
	defender := hostileRec.ToDefenderStats()

	attackerBuffs := &lcars.BuffSet{}
	if *captainID != "" {
		crew, err := loadCrew(paths.OfficersDir, *captainID, *bridgeIDs, *belowDecksIDs, *rank)
		if err != nil {
			log.Fatalf("load crew: %v", err)
		}
		attackerBuffs, err = lcars.Compile(crew, lcars.StatSource(attacker.ToStatSource()), profile, lcars.CompileOptions{})
		if err != nil {
			log.Fatalf("compile crew: %v", err)
		}
	}

	if *sampleCount > 0 {
		stats := montecarlo.RunMonteCarlo(montecarlo.Scenario{
			Attacker:      attacker,
			Defender:      defender,
			AttackerBuffs: attackerBuffs,
			DefenderBuffs: &lcars.BuffSet{},
		}, montecarlo.Options{N: *sampleCount, BaseSeed: *seed, Workers: *workers})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(stats)
		return
	}

	var trace combat.Trace
	outcome := combat.Simulate(attacker, defender, attackerBuffs, &lcars.BuffSet{}, *seed, &trace)

	fmt.Printf("win=%v stall=%v rounds=%d attacker_hull_frac=%.3f\n", outcome.Win, outcome.Stall, outcome.Rounds, outcome.AttackerHullFrac)

	if *traceOut != "" {
		raw, err := json.MarshalIndent(trace.Events, "", "  ")
		if err != nil {
			log.Fatalf("marshal trace: %v", err)
		}
		if err := os.WriteFile(*traceOut, raw, 0644); err != nil {
			log.Fatalf("write trace: %v", err)
		}
		log.Printf("trace written to %s (%d events)", *traceOut, len(trace.Events))
	}
}

func loadCrew(officersDir, captainID, bridgeCSV, belowDecksCSV string, rank int) (*lcars.Crew, error) {
	catalogue, err := data.LoadOfficerCatalogue(officersDir)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*lcars.Officer, len(catalogue))
	for _, o := range catalogue {
		byID[o.ID] = o
	}
	find := func(id string) (*lcars.Officer, error) {
		o, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown officer id %q", id)
		}
		return o, nil
	}

	captain, err := find(captainID)
	if err != nil {
		return nil, err
	}

	bridgeIDs := splitCSV(bridgeCSV)
	if len(bridgeIDs) != 2 {
		return nil, fmt.Errorf("--bridge must name exactly two officer ids, got %d", len(bridgeIDs))
	}
	bridge0, err := find(bridgeIDs[0])
	if err != nil {
		return nil, err
	}
	bridge1, err := find(bridgeIDs[1])
	if err != nil {
		return nil, err
	}

	belowDecksIDs := splitCSV(belowDecksCSV)
	belowDecks := make([]lcars.OfficerAssignment, 0, len(belowDecksIDs))
	for _, id := range belowDecksIDs {
		o, err := find(id)
		if err != nil {
			return nil, err
		}
		belowDecks = append(belowDecks, lcars.OfficerAssignment{Officer: o, Seat: lcars.SeatBelowDecks, Rank: rank})
	}
	if len(belowDecks) == 0 {
		return nil, fmt.Errorf("--below-decks must name at least one officer id")
	}

	return &lcars.Crew{
		Captain: lcars.OfficerAssignment{Officer: captain, Seat: lcars.SeatCaptain, Rank: rank},
		Bridge: [2]lcars.OfficerAssignment{
			{Officer: bridge0, Seat: lcars.SeatBridge, Rank: rank},
			{Officer: bridge1, Seat: lcars.SeatBridge, Rank: rank},
		},
		BelowDecks: belowDecks,
	}, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
