/*
Package views implements the pricing-view subsystem: sparse per-view
overrides over the base dataset, their resolution into effective values,
and the allocation-distribution workflows.

PURPOSE:
  A pricing view is a named what-if scenario. It owns a sparse set of
  override rows (active flags, settings, allocation shares); everything it
  does not override falls through to the base dataset. Base rows are never
  mutated by view operations.

KEY INTERFACES (store.go):
  BaseStore:      read base records
  AdminStore:     write base records (administrative operations)
  OverrideStore:  read/write the four override families
  BatchStore:     atomic multi-row allocation replacement
  Store:          everything, implemented by store/sqlite and views/store

SPARSE-STORAGE CONTRACT:
  An override row exists only while it differs from the base value. The
  write-time collapsing (delete-on-equal) is enforced by the mutations in
  this package, not by implementations of these interfaces.

ATOMIC BATCHES:
  ReplaceAllocations / ReplaceAllocationOverrides are all-or-nothing: a
  reader never observes some employees updated and others not. The
  distributor relies on this contract instead of implementing it.

SEE ALSO:
  - resolver.go: base + overrides -> effective dataset
  - mutations.go: set-override operations
  - distributor.go: equal / proportional / normalize algorithms
*/
package views

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// AllocationKey identifies one base or override allocation row.
type AllocationKey struct {
	EmployeeID     pricing.EmployeeID
	OverheadTypeID pricing.OverheadTypeID
}

// =============================================================================
// BASE RECORDS
// =============================================================================

// BaseStore reads the base dataset. Employee records are returned with
// their allocation rows populated.
type BaseStore interface {
	ListEmployees(ctx context.Context) ([]pricing.Employee, error)
	GetEmployee(ctx context.Context, id pricing.EmployeeID) (*pricing.Employee, error)

	ListOverheadTypes(ctx context.Context) ([]pricing.OverheadType, error)
	GetOverheadType(ctx context.Context, id pricing.OverheadTypeID) (*pricing.OverheadType, error)

	ListSettings(ctx context.Context) ([]pricing.Setting, error)
	GetSetting(ctx context.Context, key string) (*pricing.Setting, error)

	ListViews(ctx context.Context) ([]pricing.PricingView, error)
	GetView(ctx context.Context, id pricing.ViewID) (*pricing.PricingView, error)
}

// AdminStore writes base records. These are the administrative operations
// outside the override model; the core only ever reads base rows.
type AdminStore interface {
	SaveEmployee(ctx context.Context, e pricing.Employee) error
	SaveOverheadType(ctx context.Context, t pricing.OverheadType) error
	SaveSetting(ctx context.Context, s pricing.Setting) error
	SaveView(ctx context.Context, v pricing.PricingView) error
	DeleteView(ctx context.Context, id pricing.ViewID) error

	// Reset clears everything. Demo/dev use only.
	Reset(ctx context.Context) error
}

// =============================================================================
// OVERRIDE ROWS
// =============================================================================

// OverrideStore reads and writes the four sparse override families for one
// view. Read methods return a snapshot; resolution never re-reads
// mid-computation.
type OverrideStore interface {
	EmployeeActiveOverrides(ctx context.Context, viewID pricing.ViewID) (map[pricing.EmployeeID]bool, error)
	UpsertEmployeeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.EmployeeID, active bool) error
	DeleteEmployeeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.EmployeeID) error

	OverheadTypeActiveOverrides(ctx context.Context, viewID pricing.ViewID) (map[pricing.OverheadTypeID]bool, error)
	UpsertOverheadTypeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, active bool) error
	DeleteOverheadTypeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID) error

	SettingOverrides(ctx context.Context, viewID pricing.ViewID) (map[string]pricing.Setting, error)
	UpsertSettingOverride(ctx context.Context, viewID pricing.ViewID, s pricing.Setting) error
	DeleteSettingOverride(ctx context.Context, viewID pricing.ViewID, key string) error

	AllocationOverrides(ctx context.Context, viewID pricing.ViewID) (map[AllocationKey]decimal.Decimal, error)
	UpsertAllocationOverride(ctx context.Context, viewID pricing.ViewID, k AllocationKey, share decimal.Decimal) error
	DeleteAllocationOverride(ctx context.Context, viewID pricing.ViewID, k AllocationKey) error
}

// =============================================================================
// ATOMIC BATCHES
// =============================================================================

// BatchStore applies multi-row allocation writes as a single unit.
type BatchStore interface {
	// ReplaceAllocations atomically replaces ALL base allocation rows of
	// one overhead type with the given shares: the pool is rewritten as a
	// whole, so rows for employees absent from the map - inactive
	// employees included - are removed. Either every row is written or
	// none is.
	ReplaceAllocations(ctx context.Context, id pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error

	// ReplaceAllocationOverrides atomically replaces all override rows of
	// one overhead type within one view. Base rows are never touched.
	ReplaceAllocationOverrides(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error
}

// Store is the full persistence surface of the pricing-view subsystem.
type Store interface {
	BaseStore
	AdminStore
	OverrideStore
	BatchStore
}
