package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// DEFAULT RESOLUTION TESTS
// =============================================================================

func TestValuesGet_FallsBackToDocumentedDefaults(t *testing.T) {
	v := pricing.Values{}

	assertDecimal(t, "qa_ratio default", v.Get(pricing.KeyQARatio), dec("0.5"))
	assertDecimal(t, "ba_ratio default", v.Get(pricing.KeyBARatio), dec("0.25"))
	assertDecimal(t, "margin default", v.Get(pricing.KeyMargin), dec("0.2"))
	assertDecimal(t, "risk default", v.Get(pricing.KeyRisk), dec("0.1"))
	assertDecimal(t, "standard hours default", v.Get(pricing.KeyStandardHoursPerMonth), dec("160"))
	assertDecimal(t, "exchange ratio default", v.Get(pricing.KeyExchangeRatio), decimal.Zero)
	assertDecimal(t, "unknown key", v.Get("no_such_key"), decimal.Zero)
}

func TestValuesGet_StoredValueWins(t *testing.T) {
	v := pricing.Values{pricing.KeyMargin: dec("0.35")}
	assertDecimal(t, "stored margin", v.Get(pricing.KeyMargin), dec("0.35"))
}

func TestReleasableHoursKey(t *testing.T) {
	if pricing.ReleasableHoursKey(pricing.CategoryDev) != pricing.KeyDevReleasableHours {
		t.Error("DEV should use dev releasable hours")
	}
	if pricing.ReleasableHoursKey(pricing.CategoryAgenticAI) != pricing.KeyAgenticReleasableHours {
		t.Error("AGENTIC_AI should use agentic releasable hours")
	}
}

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseSettingValue_Kinds(t *testing.T) {
	cases := []struct {
		value string
		kind  pricing.SettingKind
		want  string
	}{
		{"0.25", pricing.KindNumber, "0.25"},
		{" 160 ", pricing.KindInteger, "160"},
		{"true", pricing.KindBoolean, "1"},
		{"0", pricing.KindBoolean, "0"},
		{"no", pricing.KindBoolean, "0"},
		{"3.5", pricing.KindString, "3.5"},
	}
	for _, c := range cases {
		got, err := pricing.ParseSettingValue(c.value, c.kind)
		if err != nil {
			t.Errorf("ParseSettingValue(%q, %s): unexpected error %v", c.value, c.kind, err)
			continue
		}
		assertDecimal(t, string(c.kind)+" "+c.value, got, dec(c.want))
	}
}

func TestParseSettingValue_RejectsNonFinite(t *testing.T) {
	for _, bad := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		if _, err := pricing.ParseSettingValue(bad, pricing.KindNumber); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestParseSettingValue_RejectsMalformed(t *testing.T) {
	if _, err := pricing.ParseSettingValue("not-a-number", pricing.KindNumber); err == nil {
		t.Error("expected malformed number to be rejected")
	}
	if _, err := pricing.ParseSettingValue("1.5", pricing.KindInteger); err == nil {
		t.Error("expected fractional integer to be rejected")
	}
	if _, err := pricing.ParseSettingValue("maybe", pricing.KindBoolean); err == nil {
		t.Error("expected malformed boolean to be rejected")
	}
}

func TestResolveValues_SkipsMalformedRows(t *testing.T) {
	// GIVEN: One valid and one malformed setting record
	// WHEN: Resolving effective values
	// THEN: The valid record lands; the malformed one falls back to default

	v := pricing.ResolveValues([]pricing.Setting{
		{Key: pricing.KeyMargin, Value: "0.3", Kind: pricing.KindNumber},
		{Key: pricing.KeyRisk, Value: "garbage", Kind: pricing.KindNumber},
	})

	assertDecimal(t, "margin", v.Get(pricing.KeyMargin), dec("0.3"))
	assertDecimal(t, "risk falls back", v.Get(pricing.KeyRisk), dec("0.1"))
}
