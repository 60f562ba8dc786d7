package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite holds the embedded database used for vessel, geometry, and
// loadcase metadata. WAL mode gives concurrent readers alongside the single
// writer.
type SQLite struct {
	DB     *sql.DB
	Path   string
	Logger *zap.SugaredLogger
}

// NewSQLite opens (creating if necessary) the database at path, configures
// the connection, and applies pending migrations.
func NewSQLite(path string, logger *zap.SugaredLogger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	s := &SQLite{DB: db, Path: path, Logger: logger}
	if err := s.configure(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// configure enables WAL mode, foreign keys, and a busy timeout. SQLite
// disables foreign keys by default; they must be switched on explicitly and
// verified.
func (s *SQLite) configure() error {
	if _, err := s.DB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.DB.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	var fkEnabled int
	if err := s.DB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to verify foreign keys: %w", err)
	}
	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys not enabled")
	}
	if _, err := s.DB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// The geometry replace transaction is the only multi-statement writer;
	// a single write connection sidesteps WAL writer contention.
	s.DB.SetMaxOpenConns(1)
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.DB == nil {
		return ErrDatabaseClosed
	}
	err := s.DB.Close()
	s.DB = nil
	return err
}
