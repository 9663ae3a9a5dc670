// Package config wires the CLI-facing flag/env surface for cmd/simulate
// and cmd/optimize onto the core packages' typed option structs, grounded
// on the teacher's flag.String/flag.Int block in cmd/calc-cr-v2/main.go
// and cmd/server/main.go's os.Getenv("PORT")-style server config.
package config

import (
	"flag"
	"os"
	"strings"

	"github.com/JustinWhittecar/kobayashi/internal/data"
)

// DataPaths locates the on-disk (or read-only sqlite-mirrored) catalogue
// files cmd/simulate and cmd/optimize resolve ship/hostile/officer ids
// against, grounded on original_source's DEFAULT_*_PATH constants.
type DataPaths struct {
	ShipsDir    string
	HostilesDir string
	OfficersDir string
	ProfilePath string
}

// DefaultDataPaths mirrors the DEFAULT_*_PATH constants each
// original_source/src/data/*.rs file pins, rooted under a single "data"
// directory the way the Rust prototype's paths already assume.
func DefaultDataPaths() DataPaths {
	return DataPaths{
		ShipsDir:    "data/ships",
		HostilesDir: "data/hostiles",
		OfficersDir: "data/" + data.DefaultOfficersDir,
		ProfilePath: "data/" + data.DefaultProfilePath,
	}
}

// RegisterFlags binds p's fields to CLI flags with the given prefix-free
// names, following cmd/calc-cr-v2/main.go's flag.String(name, default,
// usage) block style.
func (p *DataPaths) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&p.ShipsDir, "ships-dir", p.ShipsDir, "directory of per-ship JSON records")
	fs.StringVar(&p.HostilesDir, "hostiles-dir", p.HostilesDir, "directory of per-hostile JSON records")
	fs.StringVar(&p.OfficersDir, "officers-dir", p.OfficersDir, "directory of *.lcars.yaml officer definition files")
	fs.StringVar(&p.ProfilePath, "profile", p.ProfilePath, "path to the player profile JSON file")
}

// ServerConfig is cmd/server's runtime configuration, grounded on
// cmd/server/main.go's os.Getenv("PORT")/os.Getenv("SLIC_DB_PATH") reads.
type ServerConfig struct {
	Port            string
	DatabaseURL     string
	SQLitePath      string
	JobStorePath    string
	AllowedOrigins  []string
}

// LoadServerConfig reads server configuration from the environment,
// falling back to the same kind of local-file defaults
// cmd/server/main.go uses for its SQLite path.
func LoadServerConfig() ServerConfig {
	cfg := ServerConfig{
		Port:         os.Getenv("PORT"),
		DatabaseURL:  os.Getenv("KOBAYASHI_DATABASE_URL"),
		SQLitePath:   os.Getenv("KOBAYASHI_SQLITE_PATH"),
		JobStorePath: os.Getenv("KOBAYASHI_JOB_STORE_PATH"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "kobayashi.db"
	}
	if cfg.JobStorePath == "" {
		cfg.JobStorePath = "kobayashi-jobs.db"
	}
	if origins := os.Getenv("KOBAYASHI_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	return cfg
}
