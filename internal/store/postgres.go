// Package store persists KOBAYASHI's canonical reference data (officers,
// ships, hostiles) and durable optimize-job records, adapted from the
// teacher's internal/db package (chassis/variant ingestion into Postgres,
// a read-only sqlite mirror for local tooling).
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JustinWhittecar/kobayashi/internal/data"
)

// Store wraps a pgx connection pool the way internal/db/store.go's Store
// wraps one, retargeted from chassis/variant upserts to officer/ship/
// hostile catalogue upserts and optimize-job bookkeeping.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// UpsertShip writes one normalized ship record, keyed on id, following
// internal/db/store.go's UpsertChassis "insert, on conflict update"
// single-statement idiom.
func (s *Store) UpsertShip(ctx context.Context, tx pgx.Tx, rec data.ShipRecord) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO ships (id, ship_name, ship_class, armor_piercing, shield_piercing,
		 accuracy, attack, crit_chance, crit_damage, hull_health, shield_health, apex_shred)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO UPDATE SET
		   ship_name = EXCLUDED.ship_name, ship_class = EXCLUDED.ship_class,
		   armor_piercing = EXCLUDED.armor_piercing, shield_piercing = EXCLUDED.shield_piercing,
		   accuracy = EXCLUDED.accuracy, attack = EXCLUDED.attack,
		   crit_chance = EXCLUDED.crit_chance, crit_damage = EXCLUDED.crit_damage,
		   hull_health = EXCLUDED.hull_health, shield_health = EXCLUDED.shield_health,
		   apex_shred = EXCLUDED.apex_shred`,
		rec.ID, rec.ShipName, rec.ShipClassRaw, rec.ArmorPiercing, rec.ShieldPiercing,
		rec.Accuracy, rec.Attack, rec.CritChance, rec.CritDamage, rec.HullHealth,
		rec.ShieldHealth, rec.ApexShred,
	)
	if err != nil {
		return fmt.Errorf("upsert ship %q: %w", rec.ID, err)
	}
	return nil
}

// UpsertHostile mirrors UpsertShip for hostile records.
func (s *Store) UpsertHostile(ctx context.Context, tx pgx.Tx, rec data.HostileRecord) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO hostiles (id, hostile_name, level, ship_class, armor, shield_deflection,
		 dodge, hull_health, shield_health, attack, armor_piercing, shield_piercing, accuracy,
		 crit_chance, crit_damage)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 ON CONFLICT (id) DO UPDATE SET
		   hostile_name = EXCLUDED.hostile_name, level = EXCLUDED.level,
		   ship_class = EXCLUDED.ship_class, armor = EXCLUDED.armor,
		   shield_deflection = EXCLUDED.shield_deflection, dodge = EXCLUDED.dodge,
		   hull_health = EXCLUDED.hull_health, shield_health = EXCLUDED.shield_health,
		   attack = EXCLUDED.attack, armor_piercing = EXCLUDED.armor_piercing,
		   shield_piercing = EXCLUDED.shield_piercing, accuracy = EXCLUDED.accuracy,
		   crit_chance = EXCLUDED.crit_chance, crit_damage = EXCLUDED.crit_damage`,
		rec.ID, rec.HostileName, rec.Level, rec.ShipClass, rec.Armor, rec.ShieldDeflection,
		rec.Dodge, rec.HullHealth, rec.ShieldHealth, rec.Attack, rec.ArmorPiercing,
		rec.ShieldPiercing, rec.Accuracy, rec.CritChance, rec.CritDamage,
	)
	if err != nil {
		return fmt.Errorf("upsert hostile %q: %w", rec.ID, err)
	}
	return nil
}

// UpsertOfficer writes the compiled LCARS shape of one officer as a JSON
// blob, since its ability tree is a recursive Condition/Effect structure
// with no natural relational decomposition (spec.md §3's Ability type) —
// the officer's id/name/faction/rarity/group columns stay queryable while
// the ability payload rides along opaque, the same split
// internal/db/store.go draws between `variants` (queryable columns) and
// `variant_stats` (a wide, mostly-opaque stat blob table).
func (s *Store) UpsertOfficer(ctx context.Context, tx pgx.Tx, officerJSON []byte, id, name, faction, rarity, group string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO officers (id, name, faction, rarity, "group", definition)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, faction = EXCLUDED.faction, rarity = EXCLUDED.rarity,
		   "group" = EXCLUDED."group", definition = EXCLUDED.definition`,
		id, name, faction, rarity, group, officerJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert officer %q: %w", id, err)
	}
	return nil
}

// IngestCatalogue upserts a full ship+hostile batch inside one transaction,
// following internal/db/store.go's IngestMTF begin/upsert.../commit shape.
func (s *Store) IngestCatalogue(ctx context.Context, ships []data.ShipRecord, hostiles []data.HostileRecord) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ship := range ships {
		if err := s.UpsertShip(ctx, tx, ship); err != nil {
			return err
		}
	}
	for _, hostile := range hostiles {
		if err := s.UpsertHostile(ctx, tx, hostile); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SaveJobResult persists a finished optimize job's top-K ranking into the
// optimize_jobs table. Nothing in this repository reads the row back:
// GET /api/optimize/jobs/{id} answers from the server's in-memory registry.
func (s *Store) SaveJobResult(ctx context.Context, jobID string, state string, resultJSON []byte, jobErr error) error {
	var errText *string
	if jobErr != nil {
		text := jobErr.Error()
		errText = &text
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO optimize_jobs (id, state, result, error, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE SET
		   state = EXCLUDED.state, result = EXCLUDED.result, error = EXCLUDED.error,
		   updated_at = now()`,
		jobID, state, resultJSON, errText,
	)
	if err != nil {
		return fmt.Errorf("save job %q: %w", jobID, err)
	}
	return nil
}
