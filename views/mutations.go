/*
mutations.go - Set-override operations with write-time collapsing

PURPOSE:
  The only code that writes override rows. Each operation computes the
  next effective value and collapses the override table at write time:
  when the requested value equals the base value, any existing override
  row is deleted instead of stored. This keeps the tables sparse and makes
  "effective = base" the default state - an override row is never
  redundant with base.

REVERT SEMANTICS:
  A nil requested value is an explicit revert: the override row is deleted
  and the base value shows through again.

VALIDATION:
  All checks (view exists, entity exists, share range) run before any
  write; a failed operation leaves storage untouched.

SEE ALSO:
  - resolver.go: the read side of the merge
  - distributor.go: batch allocation writers
*/
package views

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// Mutator applies set-override operations against a store.
type Mutator struct {
	Store Store
}

// NewMutator returns a mutator over the given store.
func NewMutator(store Store) *Mutator {
	return &Mutator{Store: store}
}

// requireView confirms the view exists before any write.
func (m *Mutator) requireView(ctx context.Context, viewID pricing.ViewID) error {
	v, err := m.Store.GetView(ctx, viewID)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("view %s: %w", viewID, pricing.ErrViewNotFound)
	}
	return nil
}

// SetEmployeeActive overrides one employee's active flag within a view.
// When the requested flag equals the base flag the override row is deleted.
func (m *Mutator) SetEmployeeActive(ctx context.Context, viewID pricing.ViewID, id pricing.EmployeeID, active bool) error {
	if err := m.requireView(ctx, viewID); err != nil {
		return err
	}
	base, err := m.Store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if base == nil {
		return fmt.Errorf("employee %s: %w", id, pricing.ErrEntityNotFound)
	}

	if active == base.Active {
		return m.Store.DeleteEmployeeActiveOverride(ctx, viewID, id)
	}
	return m.Store.UpsertEmployeeActiveOverride(ctx, viewID, id, active)
}

// SetOverheadTypeActive overrides one overhead type's active flag within a
// view, with the same delete-on-equal collapsing.
func (m *Mutator) SetOverheadTypeActive(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, active bool) error {
	if err := m.requireView(ctx, viewID); err != nil {
		return err
	}
	base, err := m.Store.GetOverheadType(ctx, id)
	if err != nil {
		return err
	}
	if base == nil {
		return fmt.Errorf("overhead type %s: %w", id, pricing.ErrEntityNotFound)
	}

	if active == base.Active {
		return m.Store.DeleteOverheadTypeActiveOverride(ctx, viewID, id)
	}
	return m.Store.UpsertOverheadTypeActiveOverride(ctx, viewID, id, active)
}

// SetSetting overrides one setting within a view. A nil value deletes the
// override (explicit revert). A value that parses equal to the parsed
// global value also deletes it (keep-sparse). Otherwise the override is
// upserted - including when no global setting exists at all.
func (m *Mutator) SetSetting(ctx context.Context, viewID pricing.ViewID, key string, value *string, kind pricing.SettingKind) error {
	if err := m.requireView(ctx, viewID); err != nil {
		return err
	}

	if value == nil {
		return m.Store.DeleteSettingOverride(ctx, viewID, key)
	}

	requested, err := pricing.ParseSettingValue(*value, kind)
	if err != nil {
		return err
	}

	global, err := m.Store.GetSetting(ctx, key)
	if err != nil {
		return err
	}
	if global != nil {
		base, perr := pricing.ParseSettingValue(global.Value, global.Kind)
		if perr == nil && base.Equal(requested) {
			return m.Store.DeleteSettingOverride(ctx, viewID, key)
		}
	}

	return m.Store.UpsertSettingOverride(ctx, viewID, pricing.Setting{
		Key:   key,
		Value: *value,
		Kind:  kind,
	})
}

// SetAllocation overrides one (employee, overhead type) share within a
// view. A nil share deletes the override; a share equal to an existing
// base row's share deletes it (keep-sparse); out-of-range shares are
// rejected before any write.
func (m *Mutator) SetAllocation(ctx context.Context, viewID pricing.ViewID, id pricing.EmployeeID, typeID pricing.OverheadTypeID, share *decimal.Decimal) error {
	if err := m.requireView(ctx, viewID); err != nil {
		return err
	}
	emp, err := m.Store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("employee %s: %w", id, pricing.ErrEntityNotFound)
	}
	if ot, err := m.Store.GetOverheadType(ctx, typeID); err != nil {
		return err
	} else if ot == nil {
		return fmt.Errorf("overhead type %s: %w", typeID, pricing.ErrEntityNotFound)
	}

	key := AllocationKey{EmployeeID: id, OverheadTypeID: typeID}

	if share == nil {
		return m.Store.DeleteAllocationOverride(ctx, viewID, key)
	}
	if share.IsNegative() || share.GreaterThan(decimal.NewFromInt(1)) {
		return &pricing.ShareRangeError{EmployeeID: id, OverheadTypeID: typeID, Share: *share}
	}

	for _, a := range emp.Allocations {
		if a.OverheadTypeID == typeID && a.Share.Equal(*share) {
			return m.Store.DeleteAllocationOverride(ctx, viewID, key)
		}
	}
	return m.Store.UpsertAllocationOverride(ctx, viewID, key, *share)
}
