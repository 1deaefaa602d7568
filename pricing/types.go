/*
Package pricing provides the core cost and pricing computation engine.

PURPOSE:
  This package contains the pure calculation layer for fully-loaded employee
  costs, overhead allocation, releaseable-hour capacity, and hourly service
  pricing. It consumes plain records (employees, overhead types, settings)
  and returns plain computed values - no persistence, no HTTP, no rendering.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: compensation, FTE, category, tech stack, overhead allocations
  - OverheadType: a recurring cost pool with a billing period
  - Allocation: the share (0..1) of a pool attributed to one employee
  - Setting: a typed key/value configuration record
  - Dataset: the effective record set a computation runs against

DESIGN PRINCIPLES:
  1. Purity: every function is a deterministic transformation of its inputs
  2. Precision: uses decimal.Decimal to avoid floating-point drift in money
  3. Type Safety: strong typing for IDs prevents mixing employee/type/view IDs
  4. Explainability: every derived value can be mirrored as breakdown steps

SEE ALSO:
  - cost.go: per-employee fully-loaded cost math
  - capacity.go: capacity and per-hour rate math
  - engine.go: per-stack/per-category quote assembly
  - settings.go: typed setting values and documented defaults
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type OverheadTypeID string
type StackID string
type ViewID string

// StackUnassigned groups employees without a tech-stack reference.
const StackUnassigned StackID = ""

// =============================================================================
// ENUMS
// =============================================================================

// Category classifies an employee's role for pricing purposes.
type Category string

const (
	CategoryDev       Category = "DEV"
	CategoryQA        Category = "QA"
	CategoryBA        Category = "BA"
	CategoryAgenticAI Category = "AGENTIC_AI"
)

// BillingPeriod is the cadence an overhead amount is stated in.
type BillingPeriod string

const (
	PeriodAnnual    BillingPeriod = "annual"
	PeriodMonthly   BillingPeriod = "monthly"
	PeriodQuarterly BillingPeriod = "quarterly"
)

// =============================================================================
// BASE ENTITIES
// =============================================================================

// Employee is a base employee record. Monetary fields are monthly unless
// the name says otherwise. Optional fields are pointers; nil means "absent"
// and every formula substitutes zero.
type Employee struct {
	ID             EmployeeID
	Name           string
	Category       Category
	StackID        StackID // StackUnassigned when no tech stack is set
	GrossMonthly   decimal.Decimal
	NetMonthly     decimal.Decimal
	OncostRate     *decimal.Decimal // employer on-cost as a rate, e.g. 0.1
	AnnualBenefits *decimal.Decimal
	AnnualBonus    *decimal.Decimal
	FTE            decimal.Decimal // fractional full-time equivalent, > 0 expected
	Active         bool
	Allocations    []Allocation // ordered, at most one per overhead type
}

// Allocation attributes a share of one overhead type's cost to an employee.
// Absence of an Allocation means "no allocation", which is distinct from a
// stored share of zero.
type Allocation struct {
	OverheadTypeID OverheadTypeID
	Share          decimal.Decimal // in [0, 1]
}

// OverheadType is a named recurring cost pool (office rent, management, ...)
// distributed across employees by allocation share.
type OverheadType struct {
	ID     OverheadTypeID
	Name   string
	Amount decimal.Decimal // positive, stated per Period
	Period BillingPeriod
	Active bool
}

// PricingView is a named scenario that overrides a sparse subset of base
// data without mutating it.
type PricingView struct {
	ID   ViewID
	Name string
}

// =============================================================================
// EFFECTIVE DATASET
// =============================================================================

// Dataset is the effective record set a pricing computation runs against.
// It is produced by the views.Resolver (base data merged with an optional
// view's overrides) and is treated as an immutable snapshot:
//   - Employees holds only effective-active employees, with their
//     allocations already resolved and filtered (share > 0, active types)
//   - OverheadTypes holds only effective-active overhead types
//   - Settings holds the effective numeric settings
type Dataset struct {
	Employees     []Employee
	OverheadTypes map[OverheadTypeID]OverheadType
	Settings      Values
}

// ByCategory returns the employees of one category, preserving order.
func (d Dataset) ByCategory(c Category) []Employee {
	var out []Employee
	for _, e := range d.Employees {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	twelve = decimal.NewFromInt(12)
	four   = decimal.NewFromInt(4)
	three  = decimal.NewFromInt(3)
	one    = decimal.NewFromInt(1)
)

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// orZero dereferences an optional decimal.
func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ptr returns a pointer to d. Used for nullable computed results.
func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
