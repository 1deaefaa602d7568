/*
capacity.go - Capacity & Rate Calculator

PURPOSE:
  Turns a group of employees into releaseable-hour capacity and derives
  cost-per-releaseable-hour, the QA/BA per-hour add-ons, and the final
  price with margin and risk applied.

NULL VS FATAL VS ZERO:
  - empty employee group      -> nil rate ("no such team to price")
  - employees with 0 capacity -> FATAL CapacityError (fte = 0 is a
    data-entry mistake, not a legitimate zero)
  - empty QA/BA support team  -> add-on of exactly 0 (a missing support
    team costs nothing; never an error)
  - standard hours of 0       -> FATAL ErrZeroStandardHours

SEE ALSO:
  - cost.go: per-employee fully-loaded monthly costs
  - errors.go: fatal vs recoverable classification
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// CapacityHours is the group's releaseable capacity per month:
// releasableHoursPerMonth * sum of fte. Used identically for DEV and
// AGENTIC_AI groups.
func CapacityHours(employees []Employee, releasableHoursPerMonth decimal.Decimal) decimal.Decimal {
	fte := decimal.Zero
	for _, e := range employees {
		fte = fte.Add(e.FTE)
	}
	return releasableHoursPerMonth.Mul(fte)
}

// RateCalculator derives per-hour rates from an effective dataset. When
// Trace is non-nil every derived value is recorded as a breakdown step.
type RateCalculator struct {
	Data  Dataset
	Trace *Breakdown
}

// NewRateCalculator builds a rate calculator over an effective dataset.
func NewRateCalculator(d Dataset) *RateCalculator {
	return &RateCalculator{Data: d}
}

func (r *RateCalculator) costCalc() *CostCalculator {
	return &CostCalculator{Types: r.Data.OverheadTypes, Settings: r.Data.Settings, Trace: r.Trace}
}

// groupMonthlyCost sums fully-loaded monthly costs across a group.
func (r *RateCalculator) groupMonthlyCost(group []Employee) decimal.Decimal {
	cc := r.costCalc()
	total := decimal.Zero
	for _, e := range group {
		total = total.Add(cc.FullyLoadedMonthly(e))
	}
	return total
}

// CostPerReleasableHour returns the group's fully-loaded monthly cost per
// releaseable hour. Returns nil for an empty group. Returns a fatal
// CapacityError when employees exist but capacity is zero.
func (r *RateCalculator) CostPerReleasableHour(group []Employee, category Category, stack StackID) (*decimal.Decimal, error) {
	if len(group) == 0 {
		return nil, nil
	}

	relHours := r.Data.Settings.Get(ReleasableHoursKey(category))
	capacity := CapacityHours(group, relHours)
	if capacity.IsZero() {
		return nil, &CapacityError{Category: category, StackID: stack, Employees: len(group)}
	}

	monthly := r.groupMonthlyCost(group)
	rate := monthly.Div(capacity)

	r.Trace.Add(
		"cost per releaseable hour",
		rate,
		"sum(fullyLoadedMonthly) / capacityHours",
		map[string]decimal.Decimal{
			"teamMonthlyCost":         monthly,
			"capacityHours":           capacity,
			"releasableHoursPerMonth": relHours,
		},
	)
	return ptr(rate), nil
}

// AddOnPerReleasableHour is the shared shape of the QA and BA surcharges:
// the support team's monthly cost per standard hour, scaled by the team's
// ratio setting. An empty team costs exactly zero.
func (r *RateCalculator) AddOnPerReleasableHour(team []Employee, ratioKey string) (decimal.Decimal, error) {
	if len(team) == 0 {
		return decimal.Zero, nil
	}

	stdHours := r.Data.Settings.Get(KeyStandardHoursPerMonth)
	if stdHours.IsZero() {
		return decimal.Zero, ErrZeroStandardHours
	}

	ratio := r.Data.Settings.Get(ratioKey)
	monthly := r.groupMonthlyCost(team)
	addOn := monthly.Div(stdHours).Mul(ratio)

	r.Trace.Add(
		ratioKey+" add-on per releaseable hour",
		addOn,
		"teamMonthlyCost / standardHoursPerMonth * ratio",
		map[string]decimal.Decimal{
			"teamMonthlyCost":       monthly,
			"standardHoursPerMonth": stdHours,
			"ratio":                 ratio,
		},
	)
	return addOn, nil
}

// ReleaseableCost composes the primary per-hour cost with the QA/BA
// add-ons. A nil primary cost propagates as nil.
func (r *RateCalculator) ReleaseableCost(primary *decimal.Decimal, qaAddOn, baAddOn decimal.Decimal) *decimal.Decimal {
	if primary == nil {
		return nil
	}
	total := primary.Add(qaAddOn).Add(baAddOn)

	r.Trace.Add(
		"releaseable cost",
		total,
		"costPerReleasableHour + qaAddOn + baAddOn",
		map[string]decimal.Decimal{
			"costPerReleasableHour": *primary,
			"qaAddOn":               qaAddOn,
			"baAddOn":               baAddOn,
		},
	)
	return ptr(total)
}

// FinalPrice applies margin and risk to the releaseable cost. Nil in,
// nil out.
func (r *RateCalculator) FinalPrice(releaseableCost *decimal.Decimal) *decimal.Decimal {
	if releaseableCost == nil {
		return nil
	}
	margin := r.Data.Settings.Get(KeyMargin)
	risk := r.Data.Settings.Get(KeyRisk)
	price := releaseableCost.Mul(one.Add(margin)).Mul(one.Add(risk))

	r.Trace.Add(
		"final price",
		price,
		"releaseableCost * (1 + margin) * (1 + risk)",
		map[string]decimal.Decimal{
			"releaseableCost": *releaseableCost,
			"margin":          margin,
			"risk":            risk,
		},
	)
	return ptr(price)
}

// OverheadPerHour spreads one overhead type's monthly cost over a group's
// capacity, weighted by the group's allocation shares for that type.
// Returns nil when the group has no capacity.
func (r *RateCalculator) OverheadPerHour(group []Employee, ot OverheadType, category Category) *decimal.Decimal {
	relHours := r.Data.Settings.Get(ReleasableHoursKey(category))
	capacity := CapacityHours(group, relHours)
	if capacity.IsZero() {
		return nil
	}

	shareSum := decimal.Zero
	for _, e := range group {
		for _, a := range e.Allocations {
			if a.OverheadTypeID == ot.ID {
				shareSum = shareSum.Add(a.Share)
			}
		}
	}

	perHour := shareSum.Mul(ToMonthly(ot.Amount, ot.Period)).Div(capacity)
	converted := Convert(perHour, r.Data.Settings.Get(KeyExchangeRatio))
	return ptr(converted)
}
