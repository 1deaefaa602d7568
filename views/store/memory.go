// Package store provides an in-memory views.Store implementation for
// tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/views"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements views.Store with plain maps behind an RWMutex.
// Batch writes hold the write lock for their whole duration, which gives
// the same all-or-nothing visibility as a database transaction.
type Memory struct {
	mu        sync.RWMutex
	employees map[pricing.EmployeeID]pricing.Employee
	types     map[pricing.OverheadTypeID]pricing.OverheadType
	settings  map[string]pricing.Setting
	views     map[pricing.ViewID]pricing.PricingView

	empActiveOv  map[pricing.ViewID]map[pricing.EmployeeID]bool
	typeActiveOv map[pricing.ViewID]map[pricing.OverheadTypeID]bool
	settingOv    map[pricing.ViewID]map[string]pricing.Setting
	allocOv      map[pricing.ViewID]map[views.AllocationKey]decimal.Decimal
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.employees = make(map[pricing.EmployeeID]pricing.Employee)
	m.types = make(map[pricing.OverheadTypeID]pricing.OverheadType)
	m.settings = make(map[string]pricing.Setting)
	m.views = make(map[pricing.ViewID]pricing.PricingView)
	m.empActiveOv = make(map[pricing.ViewID]map[pricing.EmployeeID]bool)
	m.typeActiveOv = make(map[pricing.ViewID]map[pricing.OverheadTypeID]bool)
	m.settingOv = make(map[pricing.ViewID]map[string]pricing.Setting)
	m.allocOv = make(map[pricing.ViewID]map[views.AllocationKey]decimal.Decimal)
}

// copyEmployee detaches the allocation slice so callers can't mutate
// stored state through a returned record.
func copyEmployee(e pricing.Employee) pricing.Employee {
	e.Allocations = append([]pricing.Allocation(nil), e.Allocations...)
	return e
}

// =============================================================================
// BASE READS
// =============================================================================

func (m *Memory) ListEmployees(_ context.Context) ([]pricing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]pricing.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, copyEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetEmployee(_ context.Context, id pricing.EmployeeID) (*pricing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	c := copyEmployee(e)
	return &c, nil
}

func (m *Memory) ListOverheadTypes(_ context.Context) ([]pricing.OverheadType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]pricing.OverheadType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetOverheadType(_ context.Context, id pricing.OverheadTypeID) (*pricing.OverheadType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.types[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) ListSettings(_ context.Context) ([]pricing.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]pricing.Setting, 0, len(m.settings))
	for _, s := range m.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) GetSetting(_ context.Context, key string) (*pricing.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) ListViews(_ context.Context) ([]pricing.PricingView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]pricing.PricingView, 0, len(m.views))
	for _, v := range m.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetView(_ context.Context, id pricing.ViewID) (*pricing.PricingView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.views[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// =============================================================================
// BASE WRITES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, e pricing.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = copyEmployee(e)
	return nil
}

func (m *Memory) SaveOverheadType(_ context.Context, t pricing.OverheadType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[t.ID] = t
	return nil
}

func (m *Memory) SaveSetting(_ context.Context, s pricing.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.Key] = s
	return nil
}

func (m *Memory) SaveView(_ context.Context, v pricing.PricingView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[v.ID] = v
	return nil
}

func (m *Memory) DeleteView(_ context.Context, id pricing.ViewID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.views, id)
	delete(m.empActiveOv, id)
	delete(m.typeActiveOv, id)
	delete(m.settingOv, id)
	delete(m.allocOv, id)
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

// =============================================================================
// OVERRIDE ROWS
// =============================================================================

func (m *Memory) EmployeeActiveOverrides(_ context.Context, viewID pricing.ViewID) (map[pricing.EmployeeID]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[pricing.EmployeeID]bool, len(m.empActiveOv[viewID]))
	for k, v := range m.empActiveOv[viewID] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpsertEmployeeActiveOverride(_ context.Context, viewID pricing.ViewID, id pricing.EmployeeID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.empActiveOv[viewID] == nil {
		m.empActiveOv[viewID] = make(map[pricing.EmployeeID]bool)
	}
	m.empActiveOv[viewID][id] = active
	return nil
}

func (m *Memory) DeleteEmployeeActiveOverride(_ context.Context, viewID pricing.ViewID, id pricing.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.empActiveOv[viewID], id)
	return nil
}

func (m *Memory) OverheadTypeActiveOverrides(_ context.Context, viewID pricing.ViewID) (map[pricing.OverheadTypeID]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[pricing.OverheadTypeID]bool, len(m.typeActiveOv[viewID]))
	for k, v := range m.typeActiveOv[viewID] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpsertOverheadTypeActiveOverride(_ context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.typeActiveOv[viewID] == nil {
		m.typeActiveOv[viewID] = make(map[pricing.OverheadTypeID]bool)
	}
	m.typeActiveOv[viewID][id] = active
	return nil
}

func (m *Memory) DeleteOverheadTypeActiveOverride(_ context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.typeActiveOv[viewID], id)
	return nil
}

func (m *Memory) SettingOverrides(_ context.Context, viewID pricing.ViewID) (map[string]pricing.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]pricing.Setting, len(m.settingOv[viewID]))
	for k, v := range m.settingOv[viewID] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpsertSettingOverride(_ context.Context, viewID pricing.ViewID, s pricing.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settingOv[viewID] == nil {
		m.settingOv[viewID] = make(map[string]pricing.Setting)
	}
	m.settingOv[viewID][s.Key] = s
	return nil
}

func (m *Memory) DeleteSettingOverride(_ context.Context, viewID pricing.ViewID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settingOv[viewID], key)
	return nil
}

func (m *Memory) AllocationOverrides(_ context.Context, viewID pricing.ViewID) (map[views.AllocationKey]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[views.AllocationKey]decimal.Decimal, len(m.allocOv[viewID]))
	for k, v := range m.allocOv[viewID] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpsertAllocationOverride(_ context.Context, viewID pricing.ViewID, k views.AllocationKey, share decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.allocOv[viewID] == nil {
		m.allocOv[viewID] = make(map[views.AllocationKey]decimal.Decimal)
	}
	m.allocOv[viewID][k] = share
	return nil
}

func (m *Memory) DeleteAllocationOverride(_ context.Context, viewID pricing.ViewID, k views.AllocationKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.allocOv[viewID], k)
	return nil
}

// =============================================================================
// ATOMIC BATCHES
// =============================================================================

// ReplaceAllocations swaps every base allocation row of one overhead type
// under a single write lock.
func (m *Memory) ReplaceAllocations(_ context.Context, id pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for empID, e := range m.employees {
		kept := e.Allocations[:0:0]
		for _, a := range e.Allocations {
			if a.OverheadTypeID != id {
				kept = append(kept, a)
			}
		}
		if share, ok := shares[empID]; ok {
			kept = append(kept, pricing.Allocation{OverheadTypeID: id, Share: share})
		}
		e.Allocations = kept
		m.employees[empID] = e
	}
	return nil
}

// ReplaceAllocationOverrides swaps every override row of one overhead type
// within one view under a single write lock.
func (m *Memory) ReplaceAllocationOverrides(_ context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.allocOv[viewID] == nil {
		m.allocOv[viewID] = make(map[views.AllocationKey]decimal.Decimal)
	}
	for k := range m.allocOv[viewID] {
		if k.OverheadTypeID == id {
			delete(m.allocOv[viewID], k)
		}
	}
	for empID, share := range shares {
		m.allocOv[viewID][views.AllocationKey{EmployeeID: empID, OverheadTypeID: id}] = share
	}
	return nil
}
