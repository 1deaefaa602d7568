package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// CAPACITY TESTS
// =============================================================================

func TestCapacityHours_SumsFTE(t *testing.T) {
	// GIVEN: Two employees at 1.0 and 0.5 FTE with 100 releasable hours
	// WHEN: Computing capacity
	// THEN: 100 * 1.5 = 150

	group := []pricing.Employee{
		{ID: "a", FTE: dec("1")},
		{ID: "b", FTE: dec("0.5")},
	}
	assertDecimal(t, "capacity", pricing.CapacityHours(group, dec("100")), dec("150"))
}

func TestCapacityHours_EmptyGroupIsZero(t *testing.T) {
	assertDecimal(t, "capacity", pricing.CapacityHours(nil, dec("100")), decimal.Zero)
}

// =============================================================================
// COST PER RELEASEABLE HOUR TESTS
// =============================================================================

func TestCostPerReleasableHour_ReferenceEmployee(t *testing.T) {
	// GIVEN: The reference employee and 100 dev releasable hours
	// WHEN: Computing cost per releaseable hour
	// THEN: 12250 / 100 = 122.5

	d := datasetWith(map[string]string{pricing.KeyDevReleasableHours: "100"}, nil, referenceDev())
	rc := pricing.NewRateCalculator(d)

	got, err := rc.CostPerReleasableHour(d.Employees, pricing.CategoryDev, pricing.StackUnassigned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a rate, got nil")
	}
	assertDecimal(t, "cost per releaseable hour", *got, dec("122.5"))
}

func TestCostPerReleasableHour_EmptyGroupIsNil(t *testing.T) {
	// GIVEN: No employees in the group
	// WHEN: Computing cost per releaseable hour
	// THEN: nil rate, no error - "no such team" is not a failure

	d := datasetWith(map[string]string{pricing.KeyDevReleasableHours: "100"}, nil)
	got, err := pricing.NewRateCalculator(d).CostPerReleasableHour(nil, pricing.CategoryDev, "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil rate, got %s", got)
	}
}

func TestCostPerReleasableHour_ZeroCapacityIsFatal(t *testing.T) {
	// GIVEN: An employee with fte 0 - a data-entry mistake
	// WHEN: Computing cost per releaseable hour
	// THEN: A fatal CapacityError, not a silent zero

	e := referenceDev()
	e.FTE = decimal.Zero
	d := datasetWith(map[string]string{pricing.KeyDevReleasableHours: "100"}, nil, e)

	_, err := pricing.NewRateCalculator(d).CostPerReleasableHour(d.Employees, pricing.CategoryDev, pricing.StackUnassigned)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, pricing.ErrZeroCapacity) {
		t.Errorf("expected ErrZeroCapacity, got %v", err)
	}
	if !pricing.IsFatal(err) {
		t.Error("zero capacity should be classified fatal")
	}

	var ce *pricing.CapacityError
	if !errors.As(err, &ce) {
		t.Fatal("expected a *CapacityError")
	}
	if ce.Employees != 1 || ce.Category != pricing.CategoryDev {
		t.Errorf("capacity error context wrong: %+v", ce)
	}
}

// =============================================================================
// ADD-ON TESTS
// =============================================================================

func TestAddOnPerReleasableHour_EmptyTeamIsExactlyZero(t *testing.T) {
	// GIVEN: No QA employees at all
	// WHEN: Computing the QA add-on
	// THEN: Exactly 0, never an error - a missing support team costs nothing

	d := datasetWith(map[string]string{pricing.KeyStandardHoursPerMonth: "0"}, nil)
	got, err := pricing.NewRateCalculator(d).AddOnPerReleasableHour(nil, pricing.KeyQARatio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "qa add-on", got, decimal.Zero)
}

func TestAddOnPerReleasableHour_ZeroStandardHoursIsFatal(t *testing.T) {
	// GIVEN: A QA team but standard_hours_per_month of 0
	// WHEN: Computing the QA add-on
	// THEN: ErrZeroStandardHours, classified fatal

	qa := pricing.Employee{ID: "qa-1", Category: pricing.CategoryQA, GrossMonthly: dec("6000"), FTE: dec("1")}
	d := datasetWith(map[string]string{pricing.KeyStandardHoursPerMonth: "0"}, nil, qa)

	_, err := pricing.NewRateCalculator(d).AddOnPerReleasableHour([]pricing.Employee{qa}, pricing.KeyQARatio)
	if !errors.Is(err, pricing.ErrZeroStandardHours) {
		t.Fatalf("expected ErrZeroStandardHours, got %v", err)
	}
	if !pricing.IsFatal(err) {
		t.Error("zero standard hours should be classified fatal")
	}
}

func TestAddOnPerReleasableHour_ScalesByRatio(t *testing.T) {
	// GIVEN: A QA member costing 8000/month, 160 standard hours, qa_ratio 0.5
	// WHEN: Computing the QA add-on
	// THEN: 8000 / 160 * 0.5 = 25

	qa := pricing.Employee{ID: "qa-1", Category: pricing.CategoryQA, GrossMonthly: dec("8000"), FTE: dec("1")}
	d := datasetWith(map[string]string{
		pricing.KeyStandardHoursPerMonth: "160",
		pricing.KeyQARatio:               "0.5",
	}, nil, qa)

	got, err := pricing.NewRateCalculator(d).AddOnPerReleasableHour([]pricing.Employee{qa}, pricing.KeyQARatio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "qa add-on", got, dec("25"))
}

// =============================================================================
// FINAL PRICE TESTS
// =============================================================================

func TestFinalPrice_ReferenceEmployee(t *testing.T) {
	// GIVEN: Releaseable cost 122.5, margin 0.2, risk 0.1
	// WHEN: Computing the final price
	// THEN: 122.5 * 1.2 * 1.1 = 161.7

	d := datasetWith(map[string]string{
		pricing.KeyMargin: "0.2",
		pricing.KeyRisk:   "0.1",
	}, nil)
	rc := pricing.NewRateCalculator(d)

	cost := dec("122.5")
	got := rc.FinalPrice(&cost)
	if got == nil {
		t.Fatal("expected a price, got nil")
	}
	assertDecimal(t, "final price", *got, dec("161.7"))
}

func TestFinalPrice_NilPropagates(t *testing.T) {
	rc := pricing.NewRateCalculator(datasetWith(nil, nil))
	if rc.FinalPrice(nil) != nil {
		t.Error("nil releaseable cost should produce nil price")
	}
	if rc.ReleaseableCost(nil, decimal.Zero, decimal.Zero) != nil {
		t.Error("nil primary cost should produce nil releaseable cost")
	}
}

func TestReleaseableCost_AddsAddOns(t *testing.T) {
	rc := pricing.NewRateCalculator(datasetWith(nil, nil))
	cost := dec("100")
	got := rc.ReleaseableCost(&cost, dec("25"), dec("10"))
	if got == nil {
		t.Fatal("expected a releaseable cost")
	}
	assertDecimal(t, "releaseable cost", *got, dec("135"))
}

// =============================================================================
// CURRENCY INVARIANCE
// =============================================================================

func TestCostPerReleasableHour_CurrencyInvariance(t *testing.T) {
	// GIVEN: The same dataset with and without an exchange ratio R
	// WHEN: Computing cost per releaseable hour
	// THEN: converted rate = base rate / R exactly

	base := datasetWith(map[string]string{pricing.KeyDevReleasableHours: "100"}, nil, referenceDev())
	conv := datasetWith(map[string]string{
		pricing.KeyDevReleasableHours: "100",
		pricing.KeyExchangeRatio:      "4",
	}, nil, referenceDev())

	baseRate, err := pricing.NewRateCalculator(base).CostPerReleasableHour(base.Employees, pricing.CategoryDev, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	convRate, err := pricing.NewRateCalculator(conv).CostPerReleasableHour(conv.Employees, pricing.CategoryDev, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "converted rate", *convRate, baseRate.Div(dec("4")))
}

// =============================================================================
// OVERHEAD PER HOUR TESTS
// =============================================================================

func TestOverheadPerHour_SpreadsOverCapacity(t *testing.T) {
	// GIVEN: A 12000 annual pool fully allocated to one dev, 100 rel hours
	// WHEN: Computing overhead per hour
	// THEN: 1 * 1000 / 100 = 10

	ot := pricing.OverheadType{ID: "rent", Amount: dec("12000"), Period: pricing.PeriodAnnual, Active: true}
	e := referenceDev()
	e.Allocations = []pricing.Allocation{{OverheadTypeID: "rent", Share: dec("1")}}
	d := datasetWith(map[string]string{pricing.KeyDevReleasableHours: "100"}, []pricing.OverheadType{ot}, e)

	got := pricing.NewRateCalculator(d).OverheadPerHour(d.Employees, ot, pricing.CategoryDev)
	if got == nil {
		t.Fatal("expected a rate")
	}
	assertDecimal(t, "overhead per hour", *got, dec("10"))
}

func TestOverheadPerHour_NoCapacityIsNil(t *testing.T) {
	ot := pricing.OverheadType{ID: "rent", Amount: dec("12000"), Period: pricing.PeriodAnnual, Active: true}
	d := datasetWith(nil, []pricing.OverheadType{ot})
	if pricing.NewRateCalculator(d).OverheadPerHour(nil, ot, pricing.CategoryDev) != nil {
		t.Error("expected nil rate for zero capacity")
	}
}
