package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"navarch/core"
)

// GetVessels returns a page of vessels ordered by creation time.
func (s *SQLite) GetVessels(ctx context.Context, limit, offset int) ([]core.Vessel, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, geometry_rev, created_at, updated_at
		FROM vessels ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query vessels: %w", err)
	}
	defer rows.Close()

	var vessels []core.Vessel
	for rows.Next() {
		var v core.Vessel
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.GeometryRev, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vessel: %w", err)
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}

// GetVesselCount returns the total number of vessels.
func (s *SQLite) GetVesselCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM vessels").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count vessels: %w", err)
	}
	return count, nil
}

// GetVessel returns one vessel by ID.
func (s *SQLite) GetVessel(ctx context.Context, id string) (*core.Vessel, error) {
	var v core.Vessel
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, description, geometry_rev, created_at, updated_at
		FROM vessels WHERE id = ?`, id).
		Scan(&v.ID, &v.Name, &v.Description, &v.GeometryRev, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrVesselNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vessel: %w", err)
	}
	return &v, nil
}

// CreateVessel inserts a new vessel.
func (s *SQLite) CreateVessel(ctx context.Context, v *core.Vessel) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.GeometryRev = 0

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO vessels (id, name, description, geometry_rev, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Description, v.GeometryRev, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVessel
		}
		return fmt.Errorf("failed to insert vessel: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Infow("Created vessel", "id", v.ID, "name", v.Name)
	}
	return nil
}

// UpdateVessel updates name and description. Geometry revision is owned by
// ReplaceGeometry and never touched here.
func (s *SQLite) UpdateVessel(ctx context.Context, id string, v *core.Vessel) error {
	v.UpdatedAt = time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
		UPDATE vessels SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		v.Name, v.Description, v.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update vessel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return core.ErrVesselNotFound
	}
	v.ID = id
	return nil
}

// DeleteVessel removes a vessel; geometry and loadcases cascade.
func (s *SQLite) DeleteVessel(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM vessels WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete vessel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return core.ErrVesselNotFound
	}

	if s.Logger != nil {
		s.Logger.Infow("Deleted vessel", "id", id)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure. modernc.org/sqlite does not export a typed error for this, so
// the message is the contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
