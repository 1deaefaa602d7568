/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  Defines the JSON wire shapes and the helpers that write them. Amounts
  cross the wire as float64 for frontend convenience; the domain keeps
  decimal.Decimal internally, so conversion happens only at this boundary.

NULLABLE RESULTS:
  Computed per-hour rates are *float64: null means "no employees in this
  group", which the frontend renders differently from 0.

ERROR RESPONSES:
  {"error": "message", "detail": "underlying error"}
  Status codes come from the domain error taxonomy:
    400  recoverable validation errors
    404  missing records
    422  fatal computational errors (unusable input data)
    500  everything else

SEE ALSO:
  - handlers.go: the handlers producing these shapes
  - pricing/errors.go: the error taxonomy mapped here
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// RESPONSE DTOS
// =============================================================================

// EmployeeDTO is the wire shape of an employee, base or effective.
type EmployeeDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	StackID        string          `json:"stack_id,omitempty"`
	GrossMonthly   float64         `json:"gross_monthly"`
	NetMonthly     float64         `json:"net_monthly,omitempty"`
	OncostRate     *float64        `json:"oncost_rate,omitempty"`
	AnnualBenefits *float64        `json:"annual_benefits,omitempty"`
	AnnualBonus    *float64        `json:"annual_bonus,omitempty"`
	FTE            float64         `json:"fte"`
	Active         bool            `json:"active"`
	Allocations    []AllocationDTO `json:"allocations,omitempty"`
}

// AllocationDTO is one (overhead type, share) row.
type AllocationDTO struct {
	OverheadTypeID string  `json:"overhead_type_id"`
	Share          float64 `json:"share"`
}

// OverheadTypeDTO is the wire shape of a cost pool.
type OverheadTypeDTO struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Period string  `json:"period"`
	Active bool    `json:"active"`
}

// SettingDTO is the wire shape of a configuration record.
type SettingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Kind  string `json:"kind"`
	Group string `json:"group,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// ViewDTO is the wire shape of a pricing view.
type ViewDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuoteDTO is the computed pricing for one (category, stack) group.
type QuoteDTO struct {
	Category        string              `json:"category"`
	Stack           string              `json:"stack,omitempty"`
	Currency        string              `json:"currency"`
	CapacityHours   float64             `json:"capacity_hours"`
	CostPerRelHour  *float64            `json:"cost_per_releasable_hour"`
	QAAddOnPerHour  float64             `json:"qa_addon_per_hour"`
	BAAddOnPerHour  float64             `json:"ba_addon_per_hour"`
	ReleaseableCost *float64            `json:"releaseable_cost"`
	FinalPrice      *float64            `json:"final_price"`
	OverheadPerHour map[string]*float64 `json:"overhead_per_hour,omitempty"`
	Breakdown       []BreakdownStepDTO  `json:"breakdown,omitempty"`
}

// BreakdownStepDTO is one explain-trace line item.
type BreakdownStepDTO struct {
	Label   string             `json:"label"`
	Value   float64            `json:"value"`
	Formula string             `json:"formula,omitempty"`
	Inputs  map[string]float64 `json:"inputs,omitempty"`
}

// DiagnosticDTO reports how fully one overhead type is allocated.
type DiagnosticDTO struct {
	OverheadTypeID string   `json:"overhead_type_id"`
	Name           string   `json:"name"`
	ShareSum       float64  `json:"share_sum"`
	FullyAllocated bool     `json:"fully_allocated"`
	Unallocated    []string `json:"unallocated,omitempty"`
}

// OrphanDTO is an allocation row referencing a missing overhead type.
type OrphanDTO struct {
	EmployeeID     string `json:"employee_id"`
	OverheadTypeID string `json:"overhead_type_id"`
}

// ResolutionDTO is the effective dataset for an optional view.
type ResolutionDTO struct {
	View      *ViewDTO           `json:"view,omitempty"`
	Employees []EmployeeDTO      `json:"employees"`
	Overheads []OverheadTypeDTO  `json:"overhead_types"`
	Settings  map[string]float64 `json:"settings"`
	Orphaned  []OrphanDTO        `json:"orphaned_allocations,omitempty"`
}

// =============================================================================
// REQUEST DTOS
// =============================================================================

// Create/save payloads reuse the factory JSON schema (factory.EmployeeJSON,
// factory.OverheadTypeJSON, ...) so the API and dataset files share one
// format. Only the override payloads are API-specific.

// SaveViewRequest creates or updates a pricing view.
type SaveViewRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ActiveOverrideRequest overrides an active flag within a view.
type ActiveOverrideRequest struct {
	Active bool `json:"active"`
}

// SettingOverrideRequest overrides a setting within a view. A null value
// reverts to the global setting.
type SettingOverrideRequest struct {
	Value *string `json:"value"`
	Kind  string  `json:"kind,omitempty"`
}

// AllocationOverrideRequest overrides one share within a view. A null
// share reverts to the base row.
type AllocationOverrideRequest struct {
	Share *string `json:"share"`
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func employeeDTO(e pricing.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:             string(e.ID),
		Name:           e.Name,
		Category:       string(e.Category),
		StackID:        string(e.StackID),
		GrossMonthly:   e.GrossMonthly.InexactFloat64(),
		NetMonthly:     e.NetMonthly.InexactFloat64(),
		OncostRate:     floatPtr(e.OncostRate),
		AnnualBenefits: floatPtr(e.AnnualBenefits),
		AnnualBonus:    floatPtr(e.AnnualBonus),
		FTE:            e.FTE.InexactFloat64(),
		Active:         e.Active,
	}
	for _, a := range e.Allocations {
		dto.Allocations = append(dto.Allocations, AllocationDTO{
			OverheadTypeID: string(a.OverheadTypeID),
			Share:          a.Share.InexactFloat64(),
		})
	}
	return dto
}

func overheadTypeDTO(t pricing.OverheadType) OverheadTypeDTO {
	return OverheadTypeDTO{
		ID:     string(t.ID),
		Name:   t.Name,
		Amount: t.Amount.InexactFloat64(),
		Period: string(t.Period),
		Active: t.Active,
	}
}

func settingDTO(s pricing.Setting) SettingDTO {
	return SettingDTO{
		Key:   s.Key,
		Value: s.Value,
		Kind:  string(s.Kind),
		Group: s.Group,
		Unit:  s.Unit,
	}
}

func quoteDTO(q pricing.Quote) QuoteDTO {
	dto := QuoteDTO{
		Category:        string(q.Category),
		Stack:           string(q.Stack),
		Currency:        string(q.Currency),
		CapacityHours:   q.CapacityHours.InexactFloat64(),
		CostPerRelHour:  floatPtr(q.CostPerRelHour),
		QAAddOnPerHour:  q.QAAddOnPerHour.InexactFloat64(),
		BAAddOnPerHour:  q.BAAddOnPerHour.InexactFloat64(),
		ReleaseableCost: floatPtr(q.ReleaseableCost),
		FinalPrice:      floatPtr(q.FinalPrice),
	}
	if len(q.OverheadPerHour) > 0 {
		dto.OverheadPerHour = make(map[string]*float64, len(q.OverheadPerHour))
		for id, rate := range q.OverheadPerHour {
			dto.OverheadPerHour[string(id)] = floatPtr(rate)
		}
	}
	if q.Breakdown != nil {
		for _, step := range q.Breakdown.Steps {
			sd := BreakdownStepDTO{
				Label:   step.Label,
				Value:   step.Value.InexactFloat64(),
				Formula: step.Formula,
			}
			if len(step.Inputs) > 0 {
				sd.Inputs = make(map[string]float64, len(step.Inputs))
				for k, v := range step.Inputs {
					sd.Inputs[k] = v.InexactFloat64()
				}
			}
			dto.Breakdown = append(dto.Breakdown, sd)
		}
	}
	return dto
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// =============================================================================
// RESPONSE WRITERS
// =============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON shape of every error.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error to an HTTP status code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case pricing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case pricing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case pricing.IsFatal(err):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
