/*
cost.go - Employee Cost Calculator

PURPOSE:
  Computes the annual base cost, allocated overhead, and fully-loaded
  annual/monthly cost for one employee from an effective dataset.

FORMULAS:
  adjustedGrossMonthly = grossMonthly * (1 + annual_increase)
  annualBase           = convert(adjustedGrossMonthly*12*(1 + oncostRate)
                                 + annualBenefits + annualBonus)
  allocatedOverhead    = convert(sum over allocations of
                                 toAnnual(type.amount, type.period) * share)
  fullyLoadedAnnual    = annualBase + allocatedOverhead
  fullyLoadedMonthly   = fullyLoadedAnnual / 12
  rawMonthly           = adjustedGrossMonthly*(1+oncostRate)
                         + annualBenefits/12 + annualBonus/12

MISSING-DATA POLICY:
  Optional oncost rate, benefits and bonus default to zero. An allocation
  whose overhead type is not in the supplied (already active-filtered) set
  is silently skipped: the pool was deleted or deactivated, so it is no
  longer relevant. Employees with no allocations contribute zero overhead.
  Orphaned references are surfaced separately by engine diagnostics.

SEE ALSO:
  - capacity.go: aggregates fully-loaded monthly costs into hourly rates
  - engine.go: OverheadDiagnostics for orphaned allocation references
*/
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AdjustedGrossMonthly applies the annual-increase rate to gross monthly
// compensation. A zero rate is the identity.
func AdjustedGrossMonthly(e Employee, annualIncrease decimal.Decimal) decimal.Decimal {
	return e.GrossMonthly.Mul(one.Add(annualIncrease))
}

// CostCalculator computes per-employee cost figures against an effective
// dataset. When Trace is non-nil every derived value is recorded as a
// breakdown step.
type CostCalculator struct {
	Types    map[OverheadTypeID]OverheadType
	Settings Values
	Trace    *Breakdown
}

// NewCostCalculator builds a calculator over an effective dataset.
func NewCostCalculator(d Dataset) *CostCalculator {
	return &CostCalculator{Types: d.OverheadTypes, Settings: d.Settings}
}

func (c *CostCalculator) annualIncrease() decimal.Decimal {
	return c.Settings.Get(KeyAnnualIncrease)
}

func (c *CostCalculator) exchangeRatio() decimal.Decimal {
	return c.Settings.Get(KeyExchangeRatio)
}

// AnnualBase is the employee's annual compensation cost before overhead,
// currency-converted.
func (c *CostCalculator) AnnualBase(e Employee) decimal.Decimal {
	adjusted := AdjustedGrossMonthly(e, c.annualIncrease())
	annualGross := adjusted.Mul(twelve)
	base := annualGross.Mul(one.Add(orZero(e.OncostRate))).
		Add(orZero(e.AnnualBenefits)).
		Add(orZero(e.AnnualBonus))
	converted := Convert(base, c.exchangeRatio())

	c.Trace.Add(
		fmt.Sprintf("annual base (%s)", e.Name),
		converted,
		"convert(adjustedGrossMonthly * 12 * (1 + oncostRate) + annualBenefits + annualBonus)",
		map[string]decimal.Decimal{
			"adjustedGrossMonthly": adjusted,
			"oncostRate":           orZero(e.OncostRate),
			"annualBenefits":       orZero(e.AnnualBenefits),
			"annualBonus":          orZero(e.AnnualBonus),
			"exchangeRatio":        c.exchangeRatio(),
		},
	)
	return converted
}

// AllocatedOverhead is the employee's annual share of every overhead pool
// they carry an allocation for, currency-converted.
func (c *CostCalculator) AllocatedOverhead(e Employee) decimal.Decimal {
	total := decimal.Zero
	for _, a := range e.Allocations {
		ot, ok := c.Types[a.OverheadTypeID]
		if !ok {
			continue // pool deleted or deactivated; no longer relevant
		}
		total = total.Add(ToAnnual(ot.Amount, ot.Period).Mul(a.Share))
	}
	converted := Convert(total, c.exchangeRatio())

	c.Trace.Add(
		fmt.Sprintf("allocated overhead (%s)", e.Name),
		converted,
		"convert(sum(toAnnual(type.amount, type.period) * share))",
		map[string]decimal.Decimal{"exchangeRatio": c.exchangeRatio()},
	)
	return converted
}

// FullyLoadedAnnual is annual base plus allocated overhead.
func (c *CostCalculator) FullyLoadedAnnual(e Employee) decimal.Decimal {
	base := c.AnnualBase(e)
	overhead := c.AllocatedOverhead(e)
	total := base.Add(overhead)

	c.Trace.Add(
		fmt.Sprintf("fully-loaded annual (%s)", e.Name),
		total,
		"annualBase + allocatedOverhead",
		map[string]decimal.Decimal{"annualBase": base, "allocatedOverhead": overhead},
	)
	return total
}

// FullyLoadedMonthly is the fully-loaded annual cost divided by 12.
func (c *CostCalculator) FullyLoadedMonthly(e Employee) decimal.Decimal {
	annual := c.FullyLoadedAnnual(e)
	monthly := annual.Div(twelve)

	c.Trace.Add(
		fmt.Sprintf("fully-loaded monthly (%s)", e.Name),
		monthly,
		"fullyLoadedAnnual / 12",
		map[string]decimal.Decimal{"fullyLoadedAnnual": annual},
	)
	return monthly
}

// RawMonthly is the monthly compensation cost excluding overhead, used for
// raw-cost breakdowns.
func (c *CostCalculator) RawMonthly(e Employee) decimal.Decimal {
	adjusted := AdjustedGrossMonthly(e, c.annualIncrease())
	raw := adjusted.Mul(one.Add(orZero(e.OncostRate))).
		Add(orZero(e.AnnualBenefits).Div(twelve)).
		Add(orZero(e.AnnualBonus).Div(twelve))

	c.Trace.Add(
		fmt.Sprintf("raw monthly (%s)", e.Name),
		raw,
		"adjustedGrossMonthly * (1 + oncostRate) + annualBenefits/12 + annualBonus/12",
		map[string]decimal.Decimal{
			"adjustedGrossMonthly": adjusted,
			"oncostRate":           orZero(e.OncostRate),
			"annualBenefits":       orZero(e.AnnualBenefits),
			"annualBonus":          orZero(e.AnnualBonus),
		},
	)
	return raw
}
