package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// referenceDev is the documented worked example: 10000 gross, 10% oncost,
// 5000 benefits, 10000 bonus, full time.
func referenceDev() pricing.Employee {
	return pricing.Employee{
		ID:             "dev-1",
		Name:           "Dana Developer",
		Category:       pricing.CategoryDev,
		GrossMonthly:   dec("10000"),
		OncostRate:     decPtr("0.1"),
		AnnualBenefits: decPtr("5000"),
		AnnualBonus:    decPtr("10000"),
		FTE:            dec("1"),
		Active:         true,
	}
}

func datasetWith(settings map[string]string, types []pricing.OverheadType, employees ...pricing.Employee) pricing.Dataset {
	d := pricing.Dataset{
		Employees:     employees,
		OverheadTypes: map[pricing.OverheadTypeID]pricing.OverheadType{},
		Settings:      pricing.Values{},
	}
	for _, t := range types {
		d.OverheadTypes[t.ID] = t
	}
	for k, v := range settings {
		d.Settings[k] = dec(v)
	}
	return d
}

func assertDecimal(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s: got %s, want %s", label, got, want)
	}
}

// =============================================================================
// ANNUAL BASE TESTS
// =============================================================================

func TestAnnualBase_ReferenceEmployee(t *testing.T) {
	// GIVEN: 10000 gross, 10% oncost, 5000 benefits, 10000 bonus
	// WHEN: Computing the annual base
	// THEN: 10000*12*1.1 + 5000 + 10000 = 147000

	cc := pricing.NewCostCalculator(datasetWith(nil, nil))
	got := cc.AnnualBase(referenceDev())
	assertDecimal(t, "annual base", got, dec("147000"))
}

func TestAnnualBase_MissingOptionalsDefaultToZero(t *testing.T) {
	// GIVEN: An employee with only gross pay set
	// WHEN: Computing the annual base
	// THEN: Only gross*12 remains

	e := pricing.Employee{GrossMonthly: dec("5000"), FTE: dec("1")}
	cc := pricing.NewCostCalculator(datasetWith(nil, nil))
	assertDecimal(t, "annual base", cc.AnnualBase(e), dec("60000"))
}

func TestAnnualBase_AppliesAnnualIncrease(t *testing.T) {
	// GIVEN: annual_increase of 10%
	// WHEN: Computing the annual base for 5000 gross
	// THEN: 5000*1.1*12 = 66000

	d := datasetWith(map[string]string{pricing.KeyAnnualIncrease: "0.1"}, nil)
	e := pricing.Employee{GrossMonthly: dec("5000"), FTE: dec("1")}
	assertDecimal(t, "annual base", pricing.NewCostCalculator(d).AnnualBase(e), dec("66000"))
}

func TestAnnualBase_ConvertsCurrency(t *testing.T) {
	// GIVEN: exchange_ratio of 2 (1 secondary unit = 2 base units)
	// WHEN: Computing the reference employee's annual base
	// THEN: 147000 / 2 = 73500

	d := datasetWith(map[string]string{pricing.KeyExchangeRatio: "2"}, nil)
	assertDecimal(t, "annual base", pricing.NewCostCalculator(d).AnnualBase(referenceDev()), dec("73500"))
}

// =============================================================================
// ALLOCATED OVERHEAD TESTS
// =============================================================================

func TestAllocatedOverhead_NormalizesPeriods(t *testing.T) {
	// GIVEN: An annual pool of 24000 at 50% and a monthly pool of 1000 at 100%
	// WHEN: Computing allocated overhead
	// THEN: 24000*0.5 + 1000*12*1 = 24000

	types := []pricing.OverheadType{
		{ID: "rent", Amount: dec("24000"), Period: pricing.PeriodAnnual, Active: true},
		{ID: "mgmt", Amount: dec("1000"), Period: pricing.PeriodMonthly, Active: true},
	}
	e := referenceDev()
	e.Allocations = []pricing.Allocation{
		{OverheadTypeID: "rent", Share: dec("0.5")},
		{OverheadTypeID: "mgmt", Share: dec("1")},
	}

	cc := pricing.NewCostCalculator(datasetWith(nil, types))
	assertDecimal(t, "allocated overhead", cc.AllocatedOverhead(e), dec("24000"))
}

func TestAllocatedOverhead_SkipsUnknownTypeReferences(t *testing.T) {
	// GIVEN: An allocation pointing at a type missing from the effective set
	// WHEN: Computing allocated overhead
	// THEN: The row contributes nothing and no error occurs

	e := referenceDev()
	e.Allocations = []pricing.Allocation{{OverheadTypeID: "deleted", Share: dec("1")}}

	cc := pricing.NewCostCalculator(datasetWith(nil, nil))
	assertDecimal(t, "allocated overhead", cc.AllocatedOverhead(e), decimal.Zero)
}

func TestAllocatedOverhead_NoAllocationsIsZero(t *testing.T) {
	cc := pricing.NewCostCalculator(datasetWith(nil, nil))
	assertDecimal(t, "allocated overhead", cc.AllocatedOverhead(referenceDev()), decimal.Zero)
}

// =============================================================================
// FULLY-LOADED COST TESTS
// =============================================================================

func TestFullyLoadedMonthly_ReferenceEmployee(t *testing.T) {
	// GIVEN: The reference employee with no overhead
	// WHEN: Computing the fully-loaded monthly cost
	// THEN: 147000 / 12 = 12250

	cc := pricing.NewCostCalculator(datasetWith(nil, nil))
	assertDecimal(t, "fully-loaded monthly", cc.FullyLoadedMonthly(referenceDev()), dec("12250"))
}

func TestFullyLoadedAnnual_AddsOverheadToBase(t *testing.T) {
	// GIVEN: The reference employee carrying 100% of a 12000 annual pool
	// WHEN: Computing the fully-loaded annual cost
	// THEN: 147000 + 12000 = 159000

	types := []pricing.OverheadType{
		{ID: "rent", Amount: dec("12000"), Period: pricing.PeriodAnnual, Active: true},
	}
	e := referenceDev()
	e.Allocations = []pricing.Allocation{{OverheadTypeID: "rent", Share: dec("1")}}

	cc := pricing.NewCostCalculator(datasetWith(nil, types))
	assertDecimal(t, "fully-loaded annual", cc.FullyLoadedAnnual(e), dec("159000"))
}

// =============================================================================
// RAW MONTHLY TESTS
// =============================================================================

func TestRawMonthly_ExcludesOverhead(t *testing.T) {
	// GIVEN: The reference employee fully allocated to a 12000 annual pool
	// WHEN: Computing the raw monthly cost
	// THEN: 10000*1.1 + 5000/12 + 10000/12 = 12250, while the fully-loaded
	//       monthly carries the extra 1000 of overhead

	types := []pricing.OverheadType{
		{ID: "rent", Amount: dec("12000"), Period: pricing.PeriodAnnual, Active: true},
	}
	e := referenceDev()
	e.Allocations = []pricing.Allocation{{OverheadTypeID: "rent", Share: dec("1")}}

	cc := pricing.NewCostCalculator(datasetWith(nil, types))
	assertDecimal(t, "raw monthly", cc.RawMonthly(e), dec("12250"))
	assertDecimal(t, "fully-loaded monthly", cc.FullyLoadedMonthly(e), dec("13250"))
}

func TestRawMonthly_AppliesAnnualIncrease(t *testing.T) {
	// GIVEN: annual_increase of 10% and 5000 gross, no other compensation
	// WHEN: Computing the raw monthly cost
	// THEN: 5000 * 1.1 = 5500

	d := datasetWith(map[string]string{pricing.KeyAnnualIncrease: "0.1"}, nil)
	e := pricing.Employee{GrossMonthly: dec("5000"), FTE: dec("1")}
	assertDecimal(t, "raw monthly", pricing.NewCostCalculator(d).RawMonthly(e), dec("5500"))
}

func TestCostCalculator_RecordsBreakdownSteps(t *testing.T) {
	// GIVEN: A calculator with a trace attached
	// WHEN: Computing the fully-loaded monthly cost
	// THEN: Every intermediate value appears as a step, and the recorded
	//       values match the computation exactly

	cc := pricing.NewCostCalculator(datasetWith(nil, nil))
	cc.Trace = &pricing.Breakdown{}

	got := cc.FullyLoadedMonthly(referenceDev())

	if len(cc.Trace.Steps) == 0 {
		t.Fatal("expected breakdown steps to be recorded")
	}
	last := cc.Trace.Steps[len(cc.Trace.Steps)-1]
	if !last.Value.Equal(got) {
		t.Errorf("last step value %s does not match result %s", last.Value, got)
	}
}

// =============================================================================
// PERIOD NORMALIZATION TESTS
// =============================================================================

func TestToAnnual(t *testing.T) {
	assertDecimal(t, "monthly", pricing.ToAnnual(dec("100"), pricing.PeriodMonthly), dec("1200"))
	assertDecimal(t, "quarterly", pricing.ToAnnual(dec("100"), pricing.PeriodQuarterly), dec("400"))
	assertDecimal(t, "annual", pricing.ToAnnual(dec("100"), pricing.PeriodAnnual), dec("100"))
	assertDecimal(t, "unknown", pricing.ToAnnual(dec("100"), "weekly"), dec("100"))
}

func TestToMonthly(t *testing.T) {
	assertDecimal(t, "annual", pricing.ToMonthly(dec("1200"), pricing.PeriodAnnual), dec("100"))
	assertDecimal(t, "quarterly", pricing.ToMonthly(dec("300"), pricing.PeriodQuarterly), dec("100"))
	assertDecimal(t, "monthly", pricing.ToMonthly(dec("100"), pricing.PeriodMonthly), dec("100"))
}

// =============================================================================
// CURRENCY TESTS
// =============================================================================

func TestConvert_NonPositiveRatioPassesThrough(t *testing.T) {
	assertDecimal(t, "zero ratio", pricing.Convert(dec("100"), decimal.Zero), dec("100"))
	assertDecimal(t, "negative ratio", pricing.Convert(dec("100"), dec("-2")), dec("100"))
}

func TestConvert_PositiveRatioDivides(t *testing.T) {
	assertDecimal(t, "ratio 4", pricing.Convert(dec("100"), dec("4")), dec("25"))
}

func TestModeFor(t *testing.T) {
	if pricing.ModeFor(decimal.Zero) != pricing.CurrencyBase {
		t.Error("zero ratio should be base currency mode")
	}
	if pricing.ModeFor(dec("1.5")) != pricing.CurrencySecondary {
		t.Error("positive ratio should be secondary currency mode")
	}
}
