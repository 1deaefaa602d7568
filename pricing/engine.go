/*
engine.go - Pricing Orchestrator

PURPOSE:
  Composes the calculators per tech stack and employee category into the
  final result set, plus optional line-item breakdowns and overhead
  allocation diagnostics.

QUOTE ASSEMBLY (per category + stack):
  1. Take the (category, stack) bucket of effective-active employees
  2. Compute costPerReleasableHour for that bucket
  3. DEV: compute QA and BA add-ons from the GLOBAL effective QA/BA pools.
     AGENTIC_AI: both add-ons are forced to 0 - agentic pricing is defined
     to be insensitive to QA/BA teams and ratio settings, so the add-on
     math is never even consulted.
  4. Compose releaseableCost and finalPrice
  5. Optionally record a breakdown mirroring every intermediate value

SEE ALSO:
  - buckets.go: the single-pass grouping consumed here
  - capacity.go, cost.go: the composed calculators
*/
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PricedCategories are the categories quotes are produced for. QA and BA
// employees only ever appear as add-on pools.
var PricedCategories = []Category{CategoryDev, CategoryAgenticAI}

// Quote is the computed pricing for one (category, stack) group.
type Quote struct {
	Category Category
	Stack    StackID
	Currency CurrencyMode

	CapacityHours   decimal.Decimal
	CostPerRelHour  *decimal.Decimal // nil when the group is empty
	QAAddOnPerHour  decimal.Decimal
	BAAddOnPerHour  decimal.Decimal
	ReleaseableCost *decimal.Decimal
	FinalPrice      *decimal.Decimal

	// OverheadPerHour spreads each active overhead type over the group's
	// capacity; nil entries mean no capacity.
	OverheadPerHour map[OverheadTypeID]*decimal.Decimal

	// Breakdown is set when the caller asked for an explain trace.
	Breakdown *Breakdown
}

// Engine orchestrates quote computation over one effective dataset
// snapshot.
type Engine struct {
	Data    Dataset
	buckets Buckets
}

// NewEngine buckets the dataset's employees once and returns an engine
// ready to produce quotes.
func NewEngine(d Dataset) *Engine {
	return &Engine{Data: d, buckets: BucketEmployees(d.Employees)}
}

// Quote computes the pricing for one category and stack. withBreakdown
// attaches the ordered computation-step trace.
func (en *Engine) Quote(category Category, stack StackID, withBreakdown bool) (Quote, error) {
	rc := NewRateCalculator(en.Data)
	group := en.buckets.Group(category, stack)

	if withBreakdown {
		rc.Trace = &Breakdown{}
		// Raw compensation steps lead the trace, one per group member.
		cc := NewCostCalculator(en.Data)
		cc.Trace = &Breakdown{}
		for _, e := range group {
			cc.RawMonthly(e)
		}
		rc.Trace.Append(cc.Trace)
	}

	cost, err := rc.CostPerReleasableHour(group, category, stack)
	if err != nil {
		return Quote{}, err
	}

	qaAddOn, baAddOn := decimal.Zero, decimal.Zero
	if category == CategoryDev {
		if qaAddOn, err = rc.AddOnPerReleasableHour(en.buckets.Pool(CategoryQA), KeyQARatio); err != nil {
			return Quote{}, err
		}
		if baAddOn, err = rc.AddOnPerReleasableHour(en.buckets.Pool(CategoryBA), KeyBARatio); err != nil {
			return Quote{}, err
		}
	}

	releaseable := rc.ReleaseableCost(cost, qaAddOn, baAddOn)
	price := rc.FinalPrice(releaseable)

	relHours := en.Data.Settings.Get(ReleasableHoursKey(category))
	overheadRates := make(map[OverheadTypeID]*decimal.Decimal, len(en.Data.OverheadTypes))
	for id, ot := range en.Data.OverheadTypes {
		overheadRates[id] = rc.OverheadPerHour(group, ot, category)
	}

	return Quote{
		Category:        category,
		Stack:           stack,
		Currency:        ModeFor(en.Data.Settings.Get(KeyExchangeRatio)),
		CapacityHours:   CapacityHours(group, relHours),
		CostPerRelHour:  cost,
		QAAddOnPerHour:  qaAddOn,
		BAAddOnPerHour:  baAddOn,
		ReleaseableCost: releaseable,
		FinalPrice:      price,
		OverheadPerHour: overheadRates,
		Breakdown:       rc.Trace,
	}, nil
}

// QuoteAll produces a quote for every (priced category, stack) group
// present in the dataset, ordered by category then stack.
func (en *Engine) QuoteAll(withBreakdown bool) ([]Quote, error) {
	var out []Quote
	for _, cat := range PricedCategories {
		for _, stack := range en.buckets.Stacks(cat) {
			q, err := en.Quote(cat, stack, withBreakdown)
			if err != nil {
				return nil, err
			}
			out = append(out, q)
		}
	}
	return out, nil
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// OverheadDiagnostic reports how fully one overhead type is allocated.
type OverheadDiagnostic struct {
	OverheadTypeID OverheadTypeID
	Name           string
	ShareSum       decimal.Decimal
	// FullyAllocated is true when ShareSum is within
	// AllocationSumTolerance of 1.
	FullyAllocated bool
	// Unallocated lists active employees carrying no allocation row for
	// this type.
	Unallocated []EmployeeID
}

// OrphanRef is an allocation whose overhead-type reference no longer
// resolves to any supplied overhead type. Cost math skips these silently;
// diagnostics surface them so callers can warn upstream.
type OrphanRef struct {
	EmployeeID     EmployeeID
	OverheadTypeID OverheadTypeID
}

// OverheadDiagnostics reports, per active overhead type, the allocation
// sum, whether it is within tolerance of 100%, and the employees missing
// an allocation.
func (en *Engine) OverheadDiagnostics() []OverheadDiagnostic {
	ids := make([]OverheadTypeID, 0, len(en.Data.OverheadTypes))
	for id := range en.Data.OverheadTypes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]OverheadDiagnostic, 0, len(ids))
	for _, id := range ids {
		ot := en.Data.OverheadTypes[id]
		sum := decimal.Zero
		var missing []EmployeeID
		for _, e := range en.Data.Employees {
			found := false
			for _, a := range e.Allocations {
				if a.OverheadTypeID == id {
					sum = sum.Add(a.Share)
					found = true
				}
			}
			if !found {
				missing = append(missing, e.ID)
			}
		}
		out = append(out, OverheadDiagnostic{
			OverheadTypeID: id,
			Name:           ot.Name,
			ShareSum:       sum,
			FullyAllocated: sum.Sub(one).Abs().LessThanOrEqual(AllocationSumTolerance),
			Unallocated:    missing,
		})
	}
	return out
}

// OrphanedAllocations lists allocation rows whose overhead type is not in
// the effective set.
func (en *Engine) OrphanedAllocations() []OrphanRef {
	var out []OrphanRef
	for _, e := range en.Data.Employees {
		for _, a := range e.Allocations {
			if _, ok := en.Data.OverheadTypes[a.OverheadTypeID]; !ok {
				out = append(out, OrphanRef{EmployeeID: e.ID, OverheadTypeID: a.OverheadTypeID})
			}
		}
	}
	return out
}
