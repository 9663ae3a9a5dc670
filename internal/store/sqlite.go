package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

func openWithPragmas(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// ConnectCatalogueReplica opens a read-only local mirror of the officer/
// ship/hostile catalogue without a Postgres connection. cmd/simulate and
// cmd/optimize do not call it; they read the JSON and YAML catalogue files
// directly. Grounded on internal/db/sqlite.go's `?mode=ro` ConnectSQLite,
// which serves the identical purpose for the teacher's chassis/variant
// catalogue.
func ConnectCatalogueReplica(path string) (*sql.DB, error) {
	return openWithPragmas(path + "?mode=ro")
}

// ConnectJobStore opens (creating if absent) a writable local sqlite
// database holding one optimize_jobs row per finished job (written by
// SaveJobResult), so a single-process deployment can record job results
// without Postgres; nothing here reads those rows back. Grounded on
// internal/db/userdb.go's
// writable-DB-plus-inline-DDL pattern, retargeted from
// users/sessions/collections tables to a single optimize_jobs table.
func ConnectJobStore(path string) (*sql.DB, error) {
	db, err := openWithPragmas(path)
	if err != nil {
		return nil, err
	}

	const ddl = `CREATE TABLE IF NOT EXISTS optimize_jobs (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		result BLOB,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create optimize_jobs table: %w", err)
	}

	return db, nil
}

// SaveJobResult is the sqlite-backed twin of Store.SaveJobResult, for
// deployments running without Postgres.
func SaveJobResult(db *sql.DB, jobID, state string, resultJSON []byte, jobErr error) error {
	var errText *string
	if jobErr != nil {
		text := jobErr.Error()
		errText = &text
	}
	_, err := db.Exec(
		`INSERT INTO optimize_jobs (id, state, result, error, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		   state = excluded.state, result = excluded.result, error = excluded.error,
		   updated_at = CURRENT_TIMESTAMP`,
		jobID, state, resultJSON, errText,
	)
	if err != nil {
		return fmt.Errorf("save job %q: %w", jobID, err)
	}
	return nil
}
