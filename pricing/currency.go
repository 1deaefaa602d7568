/*
currency.go - Optional base-to-secondary currency conversion

PURPOSE:
  All stored amounts are in the base currency. When the exchange_ratio
  setting is positive, computed values are presented in the secondary
  currency. The ratio means "1 secondary-currency unit = ratio
  base-currency units", so conversion divides.

SINGLE-CURRENCY MODE:
  A missing or non-positive ratio means "no conversion": amounts pass
  through unchanged and the base currency label is used. This decision is
  a pure function of the ratio and is recomputed on every settings change.

SEE ALSO:
  - settings.go: the exchange_ratio setting key and its default
*/
package pricing

import "github.com/shopspring/decimal"

// CurrencyMode names which currency computed values are presented in.
type CurrencyMode string

const (
	CurrencyBase      CurrencyMode = "base"
	CurrencySecondary CurrencyMode = "secondary"
)

// Convert converts an amount in the base currency using the exchange ratio.
// A non-positive ratio disables conversion.
func Convert(amount decimal.Decimal, ratio decimal.Decimal) decimal.Decimal {
	if !ratio.IsPositive() {
		return amount
	}
	return amount.Div(ratio)
}

// ModeFor returns the currency computed values are stated in for the ratio.
func ModeFor(ratio decimal.Decimal) CurrencyMode {
	if ratio.IsPositive() {
		return CurrencySecondary
	}
	return CurrencyBase
}
