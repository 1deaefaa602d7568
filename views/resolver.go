/*
resolver.go - Base + override merge into an effective dataset

PURPOSE:
  Given an optional view identifier, merges the base dataset with that
  view's sparse override rows into the effective values every computation
  consumes. Resolution is deterministic and side-effect-free: it reads a
  snapshot of the override set once and never re-reads mid-computation.

MERGE SEMANTICS (three independent families):
  Active flags:   effective = override row if present, else base flag.
                  Same algorithm for employees and overhead types.
  Settings:       effective = parse(override) if present, else parse(base).
  Allocations:    per base row - dropped entirely when its overhead type is
                  not effectively active; otherwise share = override if an
                  override row exists, else base share; rows with share <= 0
                  are dropped. Override-only rows (no base row) surface as
                  effective allocations when the type is active and the
                  share is positive. An inactive employee resolves to an
                  empty allocation list and is excluded from the dataset.

NO-VIEW PATH:
  Effective = base for every family; allocations still filtered to
  share > 0 and to overhead types whose base flag is true.

SEE ALSO:
  - mutations.go: the only code that writes override rows
  - pricing/engine.go: consumes the resolved dataset
*/
package views

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// ReadStore is the read-only surface resolution needs.
type ReadStore interface {
	BaseStore
	OverrideStore
}

// Resolution is the full output of one resolution pass. Dataset carries
// what computations need; the flag maps carry effective flags for every
// record (including inactive ones) for presentation; Orphaned lists
// allocation rows referencing overhead types that no longer exist.
type Resolution struct {
	View               *pricing.PricingView // nil when resolving the base dataset
	Dataset            pricing.Dataset
	EmployeeActive     map[pricing.EmployeeID]bool
	OverheadTypeActive map[pricing.OverheadTypeID]bool
	Orphaned           []pricing.OrphanRef
}

// Resolver merges base records with per-view overrides.
type Resolver struct {
	Store ReadStore
}

// NewResolver returns a resolver over the given store.
func NewResolver(store ReadStore) *Resolver {
	return &Resolver{Store: store}
}

// Resolve produces the effective dataset for an optional view. A nil
// viewID resolves the base dataset. Returns pricing.ErrViewNotFound when
// the view does not exist.
func (r *Resolver) Resolve(ctx context.Context, viewID *pricing.ViewID) (*Resolution, error) {
	employees, err := r.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	types, err := r.Store.ListOverheadTypes(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := r.Store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}

	// Snapshot the override set up front. Empty maps on the no-view path
	// make "override if present, else base" the single code path below.
	var (
		view        *pricing.PricingView
		empActive   = map[pricing.EmployeeID]bool{}
		typeActive  = map[pricing.OverheadTypeID]bool{}
		settingOver = map[string]pricing.Setting{}
		allocOver   = map[AllocationKey]decimal.Decimal{}
	)
	if viewID != nil {
		view, err = r.Store.GetView(ctx, *viewID)
		if err != nil {
			return nil, err
		}
		if view == nil {
			return nil, pricing.ErrViewNotFound
		}
		if empActive, err = r.Store.EmployeeActiveOverrides(ctx, *viewID); err != nil {
			return nil, err
		}
		if typeActive, err = r.Store.OverheadTypeActiveOverrides(ctx, *viewID); err != nil {
			return nil, err
		}
		if settingOver, err = r.Store.SettingOverrides(ctx, *viewID); err != nil {
			return nil, err
		}
		if allocOver, err = r.Store.AllocationOverrides(ctx, *viewID); err != nil {
			return nil, err
		}
	}

	res := &Resolution{
		View:               view,
		EmployeeActive:     make(map[pricing.EmployeeID]bool, len(employees)),
		OverheadTypeActive: make(map[pricing.OverheadTypeID]bool, len(types)),
	}

	// Overhead types: effective flag and the active set for the dataset.
	knownTypes := make(map[pricing.OverheadTypeID]bool, len(types))
	activeTypes := make(map[pricing.OverheadTypeID]pricing.OverheadType)
	for _, t := range types {
		knownTypes[t.ID] = true
		active := t.Active
		if ov, ok := typeActive[t.ID]; ok {
			active = ov
		}
		res.OverheadTypeActive[t.ID] = active
		if active {
			activeTypes[t.ID] = t
		}
	}

	// Settings: an override record replaces (or adds to) the base record
	// set, then everything parses into numeric values in one place.
	merged := make([]pricing.Setting, 0, len(settings)+len(settingOver))
	seen := make(map[string]bool, len(settings))
	for _, s := range settings {
		if ov, ok := settingOver[s.Key]; ok {
			s = ov
		}
		seen[s.Key] = true
		merged = append(merged, s)
	}
	for key, ov := range settingOver {
		if !seen[key] {
			merged = append(merged, ov)
		}
	}
	values := pricing.ResolveValues(merged)

	// Employees: effective flag, then per-employee allocation resolution.
	var effective []pricing.Employee
	for _, e := range employees {
		active := e.Active
		if ov, ok := empActive[e.ID]; ok {
			active = ov
		}
		res.EmployeeActive[e.ID] = active
		if !active {
			continue
		}

		resolved, orphans := resolveAllocations(e, knownTypes, activeTypes, allocOver)
		res.Orphaned = append(res.Orphaned, orphans...)
		e.Allocations = resolved
		effective = append(effective, e)
	}

	res.Dataset = pricing.Dataset{
		Employees:     effective,
		OverheadTypes: activeTypes,
		Settings:      values,
	}
	return res, nil
}

// resolveAllocations merges one employee's base allocation rows with the
// view's override rows. Base rows keep their stored order; override-only
// rows follow, ordered by overhead type for determinism.
func resolveAllocations(
	e pricing.Employee,
	known map[pricing.OverheadTypeID]bool,
	active map[pricing.OverheadTypeID]pricing.OverheadType,
	overrides map[AllocationKey]decimal.Decimal,
) ([]pricing.Allocation, []pricing.OrphanRef) {
	var (
		out     []pricing.Allocation
		orphans []pricing.OrphanRef
		covered = make(map[pricing.OverheadTypeID]bool, len(e.Allocations))
	)

	for _, a := range e.Allocations {
		covered[a.OverheadTypeID] = true
		if !known[a.OverheadTypeID] {
			orphans = append(orphans, pricing.OrphanRef{EmployeeID: e.ID, OverheadTypeID: a.OverheadTypeID})
			continue
		}
		if _, ok := active[a.OverheadTypeID]; !ok {
			continue // deactivated pool: dropped, not carried as zero
		}
		share := a.Share
		if ov, ok := overrides[AllocationKey{EmployeeID: e.ID, OverheadTypeID: a.OverheadTypeID}]; ok {
			share = ov
		}
		if share.IsPositive() {
			out = append(out, pricing.Allocation{OverheadTypeID: a.OverheadTypeID, Share: share})
		}
	}

	// Override-only rows: no base allocation exists, only a view override.
	var extra []pricing.Allocation
	for k, share := range overrides {
		if k.EmployeeID != e.ID || covered[k.OverheadTypeID] {
			continue
		}
		if !known[k.OverheadTypeID] {
			orphans = append(orphans, pricing.OrphanRef{EmployeeID: e.ID, OverheadTypeID: k.OverheadTypeID})
			continue
		}
		if _, ok := active[k.OverheadTypeID]; !ok {
			continue
		}
		if share.IsPositive() {
			extra = append(extra, pricing.Allocation{OverheadTypeID: k.OverheadTypeID, Share: share})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].OverheadTypeID < extra[j].OverheadTypeID })

	return append(out, extra...), orphans
}
