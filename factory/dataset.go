/*
Package factory provides JSON to Go dataset conversion.

PURPOSE:
  Converts JSON dataset definitions into pricing.Employee, OverheadType,
  Setting, and PricingView records. This enables dataset configuration
  without code changes - operations staff can describe a company in JSON,
  and the factory creates the proper Go structs for loading into a store.

WHY JSON?
  - Non-developers can describe teams and cost pools
  - Easy integration with an admin UI
  - Version control for pricing inputs
  - Demo scenarios ship as data, not code

JSON SCHEMA:
  {
    "employees": [
      {
        "id": "dev-1",
        "name": "Dev One",
        "category": "DEV",
        "stack_id": "go",
        "gross_monthly": "10000",
        "oncost_rate": "0.1",
        "annual_benefits": "5000",
        "annual_bonus": "10000",
        "fte": "1",
        "active": true,
        "allocations": [
          {"overhead_type_id": "rent", "share": "0.5"}
        ]
      }
    ],
    "overhead_types": [
      {"id": "rent", "name": "Office Rent", "amount": "24000",
       "period": "annual", "active": true}
    ],
    "settings": [
      {"key": "margin", "value": "0.2", "kind": "number"}
    ],
    "views": [
      {"id": "what-if", "name": "What If"}
    ]
  }

KEY FEATURES:
  - Validates categories, periods, and setting kinds
  - Sets sensible defaults (fte 1, active true, monthly period)
  - Generates identifiers for records that omit them
  - Round-trips datasets back to JSON for export

USAGE:
  factory := NewDatasetFactory()
  ds, err := factory.ParseDataset(jsonString)
  for _, e := range ds.Employees { store.SaveEmployee(ctx, e) }

SEE ALSO:
  - pricing/types.go: the target record types
  - api/scenarios.go: demo scenarios built on this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DatasetJSON is the JSON representation of a full base dataset.
type DatasetJSON struct {
	Employees     []EmployeeJSON     `json:"employees,omitempty"`
	OverheadTypes []OverheadTypeJSON `json:"overhead_types,omitempty"`
	Settings      []SettingJSON      `json:"settings,omitempty"`
	Views         []ViewJSON         `json:"views,omitempty"`
}

// EmployeeJSON is the JSON representation of an employee. Monetary fields
// are decimal strings to avoid float drift in the source of truth.
type EmployeeJSON struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	StackID        string           `json:"stack_id,omitempty"`
	GrossMonthly   string           `json:"gross_monthly"`
	NetMonthly     string           `json:"net_monthly,omitempty"`
	OncostRate     *string          `json:"oncost_rate,omitempty"`
	AnnualBenefits *string          `json:"annual_benefits,omitempty"`
	AnnualBonus    *string          `json:"annual_bonus,omitempty"`
	FTE            string           `json:"fte,omitempty"` // default "1"
	Active         *bool            `json:"active,omitempty"` // default true
	Allocations    []AllocationJSON `json:"allocations,omitempty"`
}

// AllocationJSON attributes a share of one overhead type to the employee.
type AllocationJSON struct {
	OverheadTypeID string `json:"overhead_type_id"`
	Share          string `json:"share"`
}

// OverheadTypeJSON is the JSON representation of a cost pool.
type OverheadTypeJSON struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Period string `json:"period,omitempty"` // annual, monthly, quarterly
	Active *bool  `json:"active,omitempty"` // default true
}

// SettingJSON is the JSON representation of a configuration record.
type SettingJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Kind  string `json:"kind,omitempty"` // default number
	Group string `json:"group,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// ViewJSON is the JSON representation of a pricing view.
type ViewJSON struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Dataset is the parsed output: plain base records ready for a store.
type Dataset struct {
	Employees     []pricing.Employee
	OverheadTypes []pricing.OverheadType
	Settings      []pricing.Setting
	Views         []pricing.PricingView
}

// =============================================================================
// DATASET FACTORY
// =============================================================================

// DatasetFactory converts JSON datasets to Go structs.
type DatasetFactory struct{}

// NewDatasetFactory creates a new dataset factory.
func NewDatasetFactory() *DatasetFactory {
	return &DatasetFactory{}
}

// ParseDataset parses a JSON string into base records.
func (f *DatasetFactory) ParseDataset(jsonStr string) (*Dataset, error) {
	var dj DatasetJSON
	if err := json.Unmarshal([]byte(jsonStr), &dj); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return f.FromJSON(dj)
}

// FromJSON converts DatasetJSON to base records.
func (f *DatasetFactory) FromJSON(dj DatasetJSON) (*Dataset, error) {
	ds := &Dataset{}

	for i, tj := range dj.OverheadTypes {
		t, err := parseOverheadType(tj)
		if err != nil {
			return nil, fmt.Errorf("overhead_types[%d]: %w", i, err)
		}
		ds.OverheadTypes = append(ds.OverheadTypes, t)
	}

	for i, ej := range dj.Employees {
		e, err := parseEmployee(ej)
		if err != nil {
			return nil, fmt.Errorf("employees[%d]: %w", i, err)
		}
		ds.Employees = append(ds.Employees, e)
	}

	for i, sj := range dj.Settings {
		s, err := parseSetting(sj)
		if err != nil {
			return nil, fmt.Errorf("settings[%d]: %w", i, err)
		}
		ds.Settings = append(ds.Settings, s)
	}

	for _, vj := range dj.Views {
		id := vj.ID
		if id == "" {
			id = uuid.NewString()
		}
		ds.Views = append(ds.Views, pricing.PricingView{
			ID:   pricing.ViewID(id),
			Name: vj.Name,
		})
	}

	return ds, nil
}

// ToJSON converts base records back to DatasetJSON for export.
func (f *DatasetFactory) ToJSON(ds *Dataset) DatasetJSON {
	var dj DatasetJSON

	for _, e := range ds.Employees {
		ej := EmployeeJSON{
			ID:           string(e.ID),
			Name:         e.Name,
			Category:     string(e.Category),
			StackID:      string(e.StackID),
			GrossMonthly: e.GrossMonthly.String(),
			FTE:          e.FTE.String(),
			Active:       boolPtr(e.Active),
		}
		if !e.NetMonthly.IsZero() {
			ej.NetMonthly = e.NetMonthly.String()
		}
		ej.OncostRate = decimalStr(e.OncostRate)
		ej.AnnualBenefits = decimalStr(e.AnnualBenefits)
		ej.AnnualBonus = decimalStr(e.AnnualBonus)
		for _, a := range e.Allocations {
			ej.Allocations = append(ej.Allocations, AllocationJSON{
				OverheadTypeID: string(a.OverheadTypeID),
				Share:          a.Share.String(),
			})
		}
		dj.Employees = append(dj.Employees, ej)
	}

	for _, t := range ds.OverheadTypes {
		dj.OverheadTypes = append(dj.OverheadTypes, OverheadTypeJSON{
			ID:     string(t.ID),
			Name:   t.Name,
			Amount: t.Amount.String(),
			Period: string(t.Period),
			Active: boolPtr(t.Active),
		})
	}

	for _, s := range ds.Settings {
		dj.Settings = append(dj.Settings, SettingJSON{
			Key:   s.Key,
			Value: s.Value,
			Kind:  string(s.Kind),
			Group: s.Group,
			Unit:  s.Unit,
		})
	}

	for _, v := range ds.Views {
		dj.Views = append(dj.Views, ViewJSON{ID: string(v.ID), Name: v.Name})
	}

	return dj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseEmployee(ej EmployeeJSON) (pricing.Employee, error) {
	var e pricing.Employee

	id := ej.ID
	if id == "" {
		id = uuid.NewString()
	}
	e.ID = pricing.EmployeeID(id)
	e.Name = ej.Name
	e.StackID = pricing.StackID(ej.StackID)

	category, err := parseCategory(ej.Category)
	if err != nil {
		return e, err
	}
	e.Category = category

	if e.GrossMonthly, err = parseDecimalField("gross_monthly", ej.GrossMonthly); err != nil {
		return e, err
	}
	if ej.NetMonthly != "" {
		if e.NetMonthly, err = parseDecimalField("net_monthly", ej.NetMonthly); err != nil {
			return e, err
		}
	}
	if e.OncostRate, err = parseOptionalDecimal("oncost_rate", ej.OncostRate); err != nil {
		return e, err
	}
	if e.AnnualBenefits, err = parseOptionalDecimal("annual_benefits", ej.AnnualBenefits); err != nil {
		return e, err
	}
	if e.AnnualBonus, err = parseOptionalDecimal("annual_bonus", ej.AnnualBonus); err != nil {
		return e, err
	}

	if ej.FTE == "" {
		e.FTE = decimal.NewFromInt(1)
	} else if e.FTE, err = parseDecimalField("fte", ej.FTE); err != nil {
		return e, err
	}

	e.Active = true
	if ej.Active != nil {
		e.Active = *ej.Active
	}

	for i, aj := range ej.Allocations {
		share, err := parseDecimalField("share", aj.Share)
		if err != nil {
			return e, fmt.Errorf("allocations[%d]: %w", i, err)
		}
		if share.IsNegative() || share.GreaterThan(decimal.NewFromInt(1)) {
			return e, fmt.Errorf("allocations[%d]: share %s out of range [0, 1]", i, share)
		}
		e.Allocations = append(e.Allocations, pricing.Allocation{
			OverheadTypeID: pricing.OverheadTypeID(aj.OverheadTypeID),
			Share:          share,
		})
	}

	return e, nil
}

func parseOverheadType(tj OverheadTypeJSON) (pricing.OverheadType, error) {
	var t pricing.OverheadType

	id := tj.ID
	if id == "" {
		id = uuid.NewString()
	}
	t.ID = pricing.OverheadTypeID(id)
	t.Name = tj.Name

	amount, err := parseDecimalField("amount", tj.Amount)
	if err != nil {
		return t, err
	}
	t.Amount = amount
	t.Period = parsePeriod(tj.Period)

	t.Active = true
	if tj.Active != nil {
		t.Active = *tj.Active
	}
	return t, nil
}

func parseSetting(sj SettingJSON) (pricing.Setting, error) {
	kind := parseKind(sj.Kind)
	if _, err := pricing.ParseSettingValue(sj.Value, kind); err != nil {
		return pricing.Setting{}, err
	}
	return pricing.Setting{
		Key:   sj.Key,
		Value: sj.Value,
		Kind:  kind,
		Group: sj.Group,
		Unit:  sj.Unit,
	}, nil
}

func parseCategory(s string) (pricing.Category, error) {
	switch pricing.Category(s) {
	case pricing.CategoryDev, pricing.CategoryQA, pricing.CategoryBA, pricing.CategoryAgenticAI:
		return pricing.Category(s), nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

func parsePeriod(s string) pricing.BillingPeriod {
	switch pricing.BillingPeriod(s) {
	case pricing.PeriodAnnual:
		return pricing.PeriodAnnual
	case pricing.PeriodQuarterly:
		return pricing.PeriodQuarterly
	default:
		return pricing.PeriodMonthly
	}
}

func parseKind(s string) pricing.SettingKind {
	switch pricing.SettingKind(s) {
	case pricing.KindInteger:
		return pricing.KindInteger
	case pricing.KindBoolean:
		return pricing.KindBoolean
	case pricing.KindString:
		return pricing.KindString
	default:
		return pricing.KindNumber
	}
}

func parseDecimalField(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %s: invalid decimal %q", name, value)
	}
	return d, nil
}

func parseOptionalDecimal(name string, value *string) (*decimal.Decimal, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := parseDecimalField(name, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func boolPtr(b bool) *bool { return &b }

func decimalStr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
