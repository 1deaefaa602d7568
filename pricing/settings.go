/*
settings.go - Typed setting values, parsing, and documented defaults

PURPOSE:
  Settings are stored as text plus a kind tag and consumed by the formulas
  as a key -> number mapping. This file owns the tagged-value parsing and
  the single declarative default table every formula consults. An undefined
  key means "use the documented default", never an error.

KINDS:
  number   decimal text, e.g. "0.25"
  integer  whole number text, e.g. "160"
  boolean  "true"/"false"/"1"/"0", consumed as 1 or 0
  string   free text parsed as a number where possible

NON-FINITE GUARD:
  Values that parse to NaN or +/-Inf are rejected at the boundary; the
  consuming formula then falls back to its default. decimal.Decimal cannot
  represent non-finite values, so nothing downstream needs to re-check.

SEE ALSO:
  - currency.go: exchange_ratio consumer
  - capacity.go: ratio and hour settings consumers
*/
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SETTING RECORDS
// =============================================================================

// SettingKind tags how a stored setting value is typed.
type SettingKind string

const (
	KindNumber  SettingKind = "number"
	KindInteger SettingKind = "integer"
	KindBoolean SettingKind = "boolean"
	KindString  SettingKind = "string"
)

// Setting is a stored configuration record. Value is text; Kind says how
// to read it.
type Setting struct {
	Key   string
	Value string
	Kind  SettingKind
	Group string
	Unit  string
}

// =============================================================================
// WELL-KNOWN KEYS AND DEFAULTS
// =============================================================================

// Setting keys consumed by the pricing formulas.
const (
	KeyExchangeRatio            = "exchange_ratio"
	KeyAnnualIncrease           = "annual_increase"
	KeyQARatio                  = "qa_ratio"
	KeyBARatio                  = "ba_ratio"
	KeyMargin                   = "margin"
	KeyRisk                     = "risk"
	KeyStandardHoursPerMonth    = "standard_hours_per_month"
	KeyDevReleasableHours       = "dev_releasable_hours_per_month"
	KeyAgenticReleasableHours   = "agentic_releasable_hours_per_month"
)

// Defaults is the single declarative table of per-key fallbacks. Every
// formula resolves missing keys through this table via Values.Get.
var Defaults = map[string]decimal.Decimal{
	KeyExchangeRatio:          decimal.Zero, // zero ratio = single-currency mode
	KeyAnnualIncrease:         decimal.Zero,
	KeyQARatio:                decimal.NewFromFloat(0.5),
	KeyBARatio:                decimal.NewFromFloat(0.25),
	KeyMargin:                 decimal.NewFromFloat(0.2),
	KeyRisk:                   decimal.NewFromFloat(0.1),
	KeyStandardHoursPerMonth:  decimal.NewFromInt(160),
	KeyDevReleasableHours:     decimal.Zero,
	KeyAgenticReleasableHours: decimal.Zero,
}

// AllocationSumTolerance is the business tolerance for treating an overhead
// type's allocation sum as "fully allocated": a sum within this distance of
// 1 (i.e. 0.995..1.005) is considered valid. A policy choice, not a derived
// constant.
var AllocationSumTolerance = decimal.NewFromFloat(0.005)

// =============================================================================
// EFFECTIVE VALUES
// =============================================================================

// Values is the effective settings consumed by the formulas: key -> number.
type Values map[string]decimal.Decimal

// Get returns the value for key, falling back to the Defaults table and
// finally zero for keys without a documented default.
func (v Values) Get(key string) decimal.Decimal {
	if d, ok := v[key]; ok {
		return d
	}
	if d, ok := Defaults[key]; ok {
		return d
	}
	return decimal.Zero
}

// ReleasableHoursKey maps a category to the setting key holding its
// releasable hours per month. QA/BA capacity is never priced directly, so
// only DEV and AGENTIC_AI have keys.
func ReleasableHoursKey(c Category) string {
	if c == CategoryAgenticAI {
		return KeyAgenticReleasableHours
	}
	return KeyDevReleasableHours
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSettingValue reads a stored text value according to its kind and
// returns the number the formulas consume. Booleans become 1/0. Returns an
// error for text that does not represent a finite number.
func ParseSettingValue(value string, kind SettingKind) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	switch kind {
	case KindBoolean:
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return one, nil
		case "false", "0", "no", "":
			return decimal.Zero, nil
		default:
			return decimal.Zero, fmt.Errorf("setting value %q is not a boolean", value)
		}
	case KindInteger:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("setting value %q is not an integer: %w", value, err)
		}
		return decimal.NewFromInt(n), nil
	case KindNumber, KindString:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("setting value %q is not a number: %w", value, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("setting value %q is not finite", value)
		}
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown setting kind %q", kind)
	}
}

// ResolveValues parses a list of setting records into effective Values.
// Records that fail to parse are skipped so a single malformed row cannot
// poison the whole computation; the consuming formula uses its default.
func ResolveValues(settings []Setting) Values {
	v := make(Values, len(settings))
	for _, s := range settings {
		d, err := ParseSettingValue(s.Value, s.Kind)
		if err != nil {
			continue
		}
		v[s.Key] = d
	}
	return v
}
