package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"navarch/core"
)

// GetLoadcase returns one loadcase by ID.
func (s *SQLite) GetLoadcase(ctx context.Context, loadcaseID string) (*core.Loadcase, error) {
	var lc core.Loadcase
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, vessel_id, name, rho, kg, lcg, tcg, created_at, updated_at
		FROM loadcases WHERE id = ?`, loadcaseID).
		Scan(&lc.ID, &lc.VesselID, &lc.Name, &lc.Rho, &lc.KG, &lc.LCG, &lc.TCG, &lc.CreatedAt, &lc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrLoadcaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loadcase: %w", err)
	}
	return &lc, nil
}

// GetLoadcases returns all loadcases belonging to a vessel.
func (s *SQLite) GetLoadcases(ctx context.Context, vesselID string) ([]core.Loadcase, error) {
	if _, err := s.GetVessel(ctx, vesselID); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, vessel_id, name, rho, kg, lcg, tcg, created_at, updated_at
		FROM loadcases WHERE vessel_id = ? ORDER BY created_at, id`, vesselID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loadcases: %w", err)
	}
	defer rows.Close()

	var loadcases []core.Loadcase
	for rows.Next() {
		var lc core.Loadcase
		if err := rows.Scan(&lc.ID, &lc.VesselID, &lc.Name, &lc.Rho, &lc.KG, &lc.LCG, &lc.TCG, &lc.CreatedAt, &lc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loadcase: %w", err)
		}
		loadcases = append(loadcases, lc)
	}
	return loadcases, rows.Err()
}

// CreateLoadcase inserts a new loadcase for an existing vessel.
func (s *SQLite) CreateLoadcase(ctx context.Context, lc *core.Loadcase) error {
	if _, err := s.GetVessel(ctx, lc.VesselID); err != nil {
		return err
	}

	now := time.Now().UTC()
	lc.CreatedAt = now
	lc.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO loadcases (id, vessel_id, name, rho, kg, lcg, tcg, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lc.ID, lc.VesselID, lc.Name, lc.Rho, lc.KG, lc.LCG, lc.TCG, lc.CreatedAt, lc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLoadcase
		}
		return fmt.Errorf("failed to insert loadcase: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Infow("Created loadcase", "id", lc.ID, "vessel_id", lc.VesselID, "name", lc.Name)
	}
	return nil
}

// UpdateLoadcase updates the mutable fields of a loadcase. The owning
// vessel never changes.
func (s *SQLite) UpdateLoadcase(ctx context.Context, id string, lc *core.Loadcase) error {
	lc.UpdatedAt = time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
		UPDATE loadcases SET name = ?, rho = ?, kg = ?, lcg = ?, tcg = ?, updated_at = ?
		WHERE id = ?`,
		lc.Name, lc.Rho, lc.KG, lc.LCG, lc.TCG, lc.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update loadcase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return core.ErrLoadcaseNotFound
	}
	lc.ID = id
	return nil
}

// DeleteLoadcase removes a loadcase.
func (s *SQLite) DeleteLoadcase(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM loadcases WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete loadcase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return core.ErrLoadcaseNotFound
	}
	return nil
}
