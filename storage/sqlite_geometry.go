package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"navarch/core"
)

// GetGeometry assembles the full offset table for a vessel. The rows are
// validated through core.NewGeometry on the way out, so a corrupted grid
// surfaces as ErrIncompleteGeometry rather than bad numbers downstream.
func (s *SQLite) GetGeometry(ctx context.Context, vesselID string) (*core.Geometry, error) {
	if _, err := s.GetVessel(ctx, vesselID); err != nil {
		return nil, err
	}

	stations, err := s.queryStations(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	waterlines, err := s.queryWaterlines(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	offsets, err := s.queryOffsets(ctx, vesselID)
	if err != nil {
		return nil, err
	}

	if len(stations) == 0 && len(waterlines) == 0 && len(offsets) == 0 {
		return nil, core.ErrGeometryNotFound
	}

	geom, err := core.NewGeometry(stations, waterlines, offsets)
	if err != nil {
		var ge *core.GeometryError
		if errors.As(err, &ge) {
			ge.VesselID = vesselID
		}
		return nil, err
	}
	return geom, nil
}

// ReplaceGeometry swaps the complete grid in one transaction and bumps the
// vessel's geometry revision. The grid is validated before the transaction
// opens; a rejected grid leaves the stored geometry untouched.
func (s *SQLite) ReplaceGeometry(ctx context.Context, vesselID string, stations []core.Station, waterlines []core.Waterline, offsets []core.Offset) error {
	if _, err := core.NewGeometry(stations, waterlines, offsets); err != nil {
		var ge *core.GeometryError
		if errors.As(err, &ge) {
			ge.VesselID = vesselID
		}
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin geometry transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE vessels SET geometry_rev = geometry_rev + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), vesselID)
	if err != nil {
		return fmt.Errorf("failed to bump geometry revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revision bump: %w", err)
	}
	if n == 0 {
		return core.ErrVesselNotFound
	}

	for _, table := range []string{"offsets", "stations", "waterlines"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE vessel_id = ?", vesselID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	stStmt, err := tx.PrepareContext(ctx, "INSERT INTO stations (vessel_id, idx, x) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare station insert: %w", err)
	}
	defer stStmt.Close()
	for _, st := range stations {
		if _, err := stStmt.ExecContext(ctx, vesselID, st.Index, st.X); err != nil {
			return fmt.Errorf("failed to insert station %d: %w", st.Index, err)
		}
	}

	wlStmt, err := tx.PrepareContext(ctx, "INSERT INTO waterlines (vessel_id, idx, z) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare waterline insert: %w", err)
	}
	defer wlStmt.Close()
	for _, wl := range waterlines {
		if _, err := wlStmt.ExecContext(ctx, vesselID, wl.Index, wl.Z); err != nil {
			return fmt.Errorf("failed to insert waterline %d: %w", wl.Index, err)
		}
	}

	offStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO offsets (vessel_id, station_idx, waterline_idx, half_breadth)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare offset insert: %w", err)
	}
	defer offStmt.Close()
	for _, o := range offsets {
		if _, err := offStmt.ExecContext(ctx, vesselID, o.StationIndex, o.WaterlineIndex, o.HalfBreadth); err != nil {
			return fmt.Errorf("failed to insert offset (%d,%d): %w", o.StationIndex, o.WaterlineIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit geometry: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Infow("Replaced geometry",
			"vessel_id", vesselID,
			"stations", len(stations),
			"waterlines", len(waterlines),
			"offsets", len(offsets))
	}
	return nil
}

// DeleteGeometry removes the vessel's grid and bumps the revision so cached
// results keyed on the old geometry die with it.
func (s *SQLite) DeleteGeometry(ctx context.Context, vesselID string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin geometry transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE vessels SET geometry_rev = geometry_rev + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), vesselID)
	if err != nil {
		return fmt.Errorf("failed to bump geometry revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revision bump: %w", err)
	}
	if n == 0 {
		return core.ErrVesselNotFound
	}

	for _, table := range []string{"offsets", "stations", "waterlines"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE vessel_id = ?", vesselID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) queryStations(ctx context.Context, vesselID string) ([]core.Station, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT idx, x FROM stations WHERE vessel_id = ? ORDER BY idx", vesselID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []core.Station
	for rows.Next() {
		var st core.Station
		if err := rows.Scan(&st.Index, &st.X); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

func (s *SQLite) queryWaterlines(ctx context.Context, vesselID string) ([]core.Waterline, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT idx, z FROM waterlines WHERE vessel_id = ? ORDER BY idx", vesselID)
	if err != nil {
		return nil, fmt.Errorf("failed to query waterlines: %w", err)
	}
	defer rows.Close()

	var waterlines []core.Waterline
	for rows.Next() {
		var wl core.Waterline
		if err := rows.Scan(&wl.Index, &wl.Z); err != nil {
			return nil, fmt.Errorf("failed to scan waterline: %w", err)
		}
		waterlines = append(waterlines, wl)
	}
	return waterlines, rows.Err()
}

func (s *SQLite) queryOffsets(ctx context.Context, vesselID string) ([]core.Offset, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT station_idx, waterline_idx, half_breadth
		FROM offsets WHERE vessel_id = ? ORDER BY station_idx, waterline_idx`, vesselID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offsets: %w", err)
	}
	defer rows.Close()

	var offsets []core.Offset
	for rows.Next() {
		var o core.Offset
		if err := rows.Scan(&o.StationIndex, &o.WaterlineIndex, &o.HalfBreadth); err != nil {
			return nil, fmt.Errorf("failed to scan offset: %w", err)
		}
		offsets = append(offsets, o)
	}
	return offsets, rows.Err()
}
