/*
distributor.go - Allocation-generation algorithms

PURPOSE:
  Implements the three allocation-distribution workflows over the set of
  currently effective-active employees for one overhead type:

    Equal:        share = 1 / count(activeEmployees)
    Proportional: share(e) = adjustedGross(e) / sum(adjustedGross)
    Normalize:    share(e) = currentShare(e) / sum(currentShares)

  Each algorithm resolves the effective dataset first, computes every
  share, and writes the whole row set through a single atomic batch - a
  partially-applied allocation set is never observable.

WRITE TARGETS:
  Without a view, the base allocation rows of the overhead type are
  replaced. With a view, only the view's override rows are replaced
  (normalize reads EFFECTIVE shares - override if present, else base - and
  writes an override row for every entry, untouched ones included); base
  rows are never mutated by the view-scoped variants.

SEE ALSO:
  - store.go: the atomicity contract the batches rely on
  - resolver.go: effective-active employee/type resolution
*/
package views

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// Distributor runs the allocation algorithms against a store.
type Distributor struct {
	Store Store
}

// NewDistributor returns a distributor over the given store.
func NewDistributor(store Store) *Distributor {
	return &Distributor{Store: store}
}

// prepare resolves the effective dataset and confirms the target overhead
// type exists and is effectively active.
func (d *Distributor) prepare(ctx context.Context, viewID *pricing.ViewID, typeID pricing.OverheadTypeID) (*Resolution, error) {
	ot, err := d.Store.GetOverheadType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if ot == nil {
		return nil, fmt.Errorf("overhead type %s: %w", typeID, pricing.ErrEntityNotFound)
	}

	res, err := NewResolver(d.Store).Resolve(ctx, viewID)
	if err != nil {
		return nil, err
	}
	if !res.OverheadTypeActive[typeID] {
		return nil, fmt.Errorf("overhead type %s: %w", typeID, pricing.ErrOverheadTypeNotActive)
	}
	return res, nil
}

// write applies the computed shares to the correct target table.
func (d *Distributor) write(ctx context.Context, viewID *pricing.ViewID, typeID pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error {
	if viewID == nil {
		return d.Store.ReplaceAllocations(ctx, typeID, shares)
	}
	return d.Store.ReplaceAllocationOverrides(ctx, *viewID, typeID, shares)
}

// AllocateEqually gives every effective-active employee the same share of
// the overhead type: 1 / count.
func (d *Distributor) AllocateEqually(ctx context.Context, viewID *pricing.ViewID, typeID pricing.OverheadTypeID) error {
	res, err := d.prepare(ctx, viewID, typeID)
	if err != nil {
		return err
	}
	active := res.Dataset.Employees
	if len(active) == 0 {
		return pricing.ErrNoActiveEmployees
	}

	share := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(len(active))))
	shares := make(map[pricing.EmployeeID]decimal.Decimal, len(active))
	for _, e := range active {
		shares[e.ID] = share
	}
	return d.write(ctx, viewID, typeID, shares)
}

// AllocateProportionalToGross weights every effective-active employee's
// share by their adjusted gross monthly compensation.
func (d *Distributor) AllocateProportionalToGross(ctx context.Context, viewID *pricing.ViewID, typeID pricing.OverheadTypeID) error {
	res, err := d.prepare(ctx, viewID, typeID)
	if err != nil {
		return err
	}
	active := res.Dataset.Employees
	if len(active) == 0 {
		return pricing.ErrNoActiveEmployees
	}

	increase := res.Dataset.Settings.Get(pricing.KeyAnnualIncrease)
	total := decimal.Zero
	for _, e := range active {
		total = total.Add(pricing.AdjustedGrossMonthly(e, increase))
	}
	if total.IsZero() {
		return pricing.ErrZeroTotalGross
	}

	shares := make(map[pricing.EmployeeID]decimal.Decimal, len(active))
	for _, e := range active {
		shares[e.ID] = pricing.AdjustedGrossMonthly(e, increase).Div(total)
	}
	return d.write(ctx, viewID, typeID, shares)
}

// NormalizeShares rescales the overhead type's current shares so they sum
// to 1 while preserving relative proportions. "Current share" is the
// EFFECTIVE share, so the view-scoped variant normalizes what the view
// actually sees and writes the result as override rows only.
func (d *Distributor) NormalizeShares(ctx context.Context, viewID *pricing.ViewID, typeID pricing.OverheadTypeID) error {
	res, err := d.prepare(ctx, viewID, typeID)
	if err != nil {
		return err
	}

	current := make(map[pricing.EmployeeID]decimal.Decimal)
	sum := decimal.Zero
	for _, e := range res.Dataset.Employees {
		for _, a := range e.Allocations {
			if a.OverheadTypeID == typeID {
				current[e.ID] = a.Share
				sum = sum.Add(a.Share)
			}
		}
	}
	if len(current) == 0 || sum.IsZero() {
		return pricing.ErrNothingToNormalize
	}

	shares := make(map[pricing.EmployeeID]decimal.Decimal, len(current))
	for id, share := range current {
		shares[id] = share.Div(sum)
	}
	return d.write(ctx, viewID, typeID, shares)
}
