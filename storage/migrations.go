package storage

import "fmt"

// migration is one schema step; migrations run in order inside a
// transaction each, tracked in schema_version.
type migration struct {
	version int
	name    string
	apply   string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		apply: `
CREATE TABLE IF NOT EXISTS vessels (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    geometry_rev INTEGER NOT NULL DEFAULT 0,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS stations (
    vessel_id TEXT NOT NULL REFERENCES vessels(id) ON DELETE CASCADE,
    idx       INTEGER NOT NULL,
    x         REAL NOT NULL,
    PRIMARY KEY (vessel_id, idx)
);

CREATE TABLE IF NOT EXISTS waterlines (
    vessel_id TEXT NOT NULL REFERENCES vessels(id) ON DELETE CASCADE,
    idx       INTEGER NOT NULL,
    z         REAL NOT NULL,
    PRIMARY KEY (vessel_id, idx)
);

CREATE TABLE IF NOT EXISTS offsets (
    vessel_id     TEXT NOT NULL REFERENCES vessels(id) ON DELETE CASCADE,
    station_idx   INTEGER NOT NULL,
    waterline_idx INTEGER NOT NULL,
    half_breadth  REAL NOT NULL,
    PRIMARY KEY (vessel_id, station_idx, waterline_idx)
);

CREATE TABLE IF NOT EXISTS loadcases (
    id         TEXT PRIMARY KEY,
    vessel_id  TEXT NOT NULL REFERENCES vessels(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    rho        REAL NOT NULL,
    kg         REAL,
    lcg        REAL,
    tcg        REAL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loadcases_vessel ON loadcases(vessel_id);
`,
	},
}

// migrate applies all pending migrations.
func (s *SQLite) migrate() error {
	if _, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := s.DB.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.DB.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.apply); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		if s.Logger != nil {
			s.Logger.Infow("Applied migration", "version", m.version, "name", m.name)
		}
	}
	return nil
}
