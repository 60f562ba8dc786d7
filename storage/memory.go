package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"navarch/core"
)

// Memory is an in-process Store used by tests and by the CLI, which
// computes on hulls loaded from files without a database.
type Memory struct {
	mu         sync.RWMutex
	vessels    map[string]core.Vessel
	geometries map[string]*core.Geometry
	loadcases  map[string]core.Loadcase
	closed     bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		vessels:    make(map[string]core.Vessel),
		geometries: make(map[string]*core.Geometry),
		loadcases:  make(map[string]core.Loadcase),
	}
}

func (m *Memory) GetVessels(_ context.Context, limit, offset int) ([]core.Vessel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	all := make([]core.Vessel, 0, len(m.vessels))
	for _, v := range m.vessels {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *Memory) GetVesselCount(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return 0, err
	}
	return int64(len(m.vessels)), nil
}

func (m *Memory) GetVessel(_ context.Context, id string) (*core.Vessel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	v, ok := m.vessels[id]
	if !ok {
		return nil, core.ErrVesselNotFound
	}
	return &v, nil
}

func (m *Memory) CreateVessel(_ context.Context, v *core.Vessel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if _, exists := m.vessels[v.ID]; exists {
		return ErrDuplicateVessel
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.GeometryRev = 0
	m.vessels[v.ID] = *v
	return nil
}

func (m *Memory) UpdateVessel(_ context.Context, id string, v *core.Vessel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	cur, ok := m.vessels[id]
	if !ok {
		return core.ErrVesselNotFound
	}
	cur.Name = v.Name
	cur.Description = v.Description
	cur.UpdatedAt = time.Now().UTC()
	m.vessels[id] = cur
	*v = cur
	return nil
}

func (m *Memory) DeleteVessel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if _, ok := m.vessels[id]; !ok {
		return core.ErrVesselNotFound
	}
	delete(m.vessels, id)
	delete(m.geometries, id)
	for lcID, lc := range m.loadcases {
		if lc.VesselID == id {
			delete(m.loadcases, lcID)
		}
	}
	return nil
}

func (m *Memory) GetGeometry(_ context.Context, vesselID string) (*core.Geometry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	if _, ok := m.vessels[vesselID]; !ok {
		return nil, core.ErrVesselNotFound
	}
	g, ok := m.geometries[vesselID]
	if !ok {
		return nil, core.ErrGeometryNotFound
	}
	return g, nil
}

func (m *Memory) ReplaceGeometry(_ context.Context, vesselID string, stations []core.Station, waterlines []core.Waterline, offsets []core.Offset) error {
	geom, err := core.NewGeometry(stations, waterlines, offsets)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	v, ok := m.vessels[vesselID]
	if !ok {
		return core.ErrVesselNotFound
	}
	v.GeometryRev++
	v.UpdatedAt = time.Now().UTC()
	m.vessels[vesselID] = v
	m.geometries[vesselID] = geom
	return nil
}

func (m *Memory) DeleteGeometry(_ context.Context, vesselID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	v, ok := m.vessels[vesselID]
	if !ok {
		return core.ErrVesselNotFound
	}
	v.GeometryRev++
	v.UpdatedAt = time.Now().UTC()
	m.vessels[vesselID] = v
	delete(m.geometries, vesselID)
	return nil
}

func (m *Memory) GetLoadcase(_ context.Context, loadcaseID string) (*core.Loadcase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	lc, ok := m.loadcases[loadcaseID]
	if !ok {
		return nil, core.ErrLoadcaseNotFound
	}
	return &lc, nil
}

func (m *Memory) GetLoadcases(_ context.Context, vesselID string) ([]core.Loadcase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	if _, ok := m.vessels[vesselID]; !ok {
		return nil, core.ErrVesselNotFound
	}

	var out []core.Loadcase
	for _, lc := range m.loadcases {
		if lc.VesselID == vesselID {
			out = append(out, lc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) CreateLoadcase(_ context.Context, lc *core.Loadcase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if _, ok := m.vessels[lc.VesselID]; !ok {
		return core.ErrVesselNotFound
	}
	if _, exists := m.loadcases[lc.ID]; exists {
		return ErrDuplicateLoadcase
	}
	now := time.Now().UTC()
	lc.CreatedAt = now
	lc.UpdatedAt = now
	m.loadcases[lc.ID] = *lc
	return nil
}

func (m *Memory) UpdateLoadcase(_ context.Context, id string, lc *core.Loadcase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	cur, ok := m.loadcases[id]
	if !ok {
		return core.ErrLoadcaseNotFound
	}
	cur.Name = lc.Name
	cur.Rho = lc.Rho
	cur.KG = lc.KG
	cur.LCG = lc.LCG
	cur.TCG = lc.TCG
	cur.UpdatedAt = time.Now().UTC()
	m.loadcases[id] = cur
	*lc = cur
	return nil
}

func (m *Memory) DeleteLoadcase(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if _, ok := m.loadcases[id]; !ok {
		return core.ErrLoadcaseNotFound
	}
	delete(m.loadcases, id)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) check() error {
	if m.closed {
		return ErrDatabaseClosed
	}
	return nil
}
