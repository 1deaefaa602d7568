/*
period.go - Billing-period normalization

PURPOSE:
  Overhead amounts are stored with the cadence they are billed in
  (annual, monthly, quarterly). Every formula works in either annual or
  monthly terms, so amounts are normalized here and nowhere else.

POLICY:
  The period enum is closed. An unrecognized period passes the amount
  through unchanged - a defensive default, never an error.

SEE ALSO:
  - cost.go: annualizes overhead amounts for allocated overhead
  - capacity.go: monthly overhead-per-hour rates
*/
package pricing

import "github.com/shopspring/decimal"

// ToAnnual converts an amount stated per period to its annual equivalent.
func ToAnnual(amount decimal.Decimal, period BillingPeriod) decimal.Decimal {
	switch period {
	case PeriodMonthly:
		return amount.Mul(twelve)
	case PeriodQuarterly:
		return amount.Mul(four)
	default:
		return amount
	}
}

// ToMonthly converts an amount stated per period to its monthly equivalent.
func ToMonthly(amount decimal.Decimal, period BillingPeriod) decimal.Decimal {
	switch period {
	case PeriodAnnual:
		return amount.Div(twelve)
	case PeriodQuarterly:
		return amount.Div(three)
	default:
		return amount
	}
}
