/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for testing and demos. Each scenario resets the store, loads a JSON
  dataset through the factory, and optionally applies view overrides.

AVAILABLE SCENARIOS:
  single-dev    One DEV employee with the documented compensation numbers,
                no overhead pools. The smallest dataset that produces a
                full quote.
  full-team     Two stacks of DEV plus QA, BA, and AGENTIC_AI employees,
                two overhead pools with allocations, explicit settings.
  what-if-view  full-team plus a "What If" pricing view that deactivates
                one developer, raises the margin, and shifts one rent
                share - demonstrating that base rows stay untouched.

SEE ALSO:
  - factory/dataset.go: the JSON schema the scenarios are written in
  - handlers.go: the scenario endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario is one loadable demo dataset.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	load        func(ctx context.Context, h *Handler) error
}

// scenarios is the ordered scenario registry.
func scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "single-dev",
			Description: "One developer, no overhead pools, default settings",
			load:        loadSingleDev,
		},
		{
			Name:        "full-team",
			Description: "Two dev stacks, QA/BA pools, agentic capacity, two overhead pools",
			load:        loadFullTeam,
		},
		{
			Name:        "what-if-view",
			Description: "Full team plus a what-if pricing view with overrides",
			load:        loadWhatIfView,
		},
	}
}

const singleDevJSON = `{
  "employees": [
    {
      "id": "dev-1",
      "name": "Dana Developer",
      "category": "DEV",
      "gross_monthly": "10000",
      "oncost_rate": "0.1",
      "annual_benefits": "5000",
      "annual_bonus": "10000",
      "fte": "1"
    }
  ],
  "settings": [
    {"key": "dev_releasable_hours_per_month", "value": "100", "kind": "number", "group": "capacity", "unit": "hours"},
    {"key": "margin", "value": "0.2", "kind": "number", "group": "pricing"},
    {"key": "risk", "value": "0.1", "kind": "number", "group": "pricing"}
  ]
}`

const fullTeamJSON = `{
  "overhead_types": [
    {"id": "rent", "name": "Office Rent", "amount": "120000", "period": "annual"},
    {"id": "mgmt", "name": "Management", "amount": "15000", "period": "monthly"}
  ],
  "employees": [
    {
      "id": "dev-go-1", "name": "Gopher One", "category": "DEV", "stack_id": "go",
      "gross_monthly": "10000", "oncost_rate": "0.1",
      "annual_benefits": "5000", "annual_bonus": "10000", "fte": "1",
      "allocations": [
        {"overhead_type_id": "rent", "share": "0.2"},
        {"overhead_type_id": "mgmt", "share": "0.2"}
      ]
    },
    {
      "id": "dev-go-2", "name": "Gopher Two", "category": "DEV", "stack_id": "go",
      "gross_monthly": "8000", "oncost_rate": "0.1", "fte": "0.8",
      "allocations": [
        {"overhead_type_id": "rent", "share": "0.2"},
        {"overhead_type_id": "mgmt", "share": "0.2"}
      ]
    },
    {
      "id": "dev-ts-1", "name": "Scripter One", "category": "DEV", "stack_id": "ts",
      "gross_monthly": "9000", "oncost_rate": "0.12", "fte": "1",
      "allocations": [
        {"overhead_type_id": "rent", "share": "0.2"},
        {"overhead_type_id": "mgmt", "share": "0.2"}
      ]
    },
    {
      "id": "qa-1", "name": "Quinn Assurance", "category": "QA",
      "gross_monthly": "6000", "oncost_rate": "0.1", "fte": "1",
      "allocations": [
        {"overhead_type_id": "rent", "share": "0.2"},
        {"overhead_type_id": "mgmt", "share": "0.2"}
      ]
    },
    {
      "id": "ba-1", "name": "Bailey Analyst", "category": "BA",
      "gross_monthly": "7000", "oncost_rate": "0.1", "fte": "0.5",
      "allocations": [
        {"overhead_type_id": "rent", "share": "0.2"},
        {"overhead_type_id": "mgmt", "share": "0.2"}
      ]
    },
    {
      "id": "agent-1", "name": "Agentic Pool", "category": "AGENTIC_AI",
      "gross_monthly": "2000", "fte": "1"
    }
  ],
  "settings": [
    {"key": "dev_releasable_hours_per_month", "value": "100", "kind": "number", "group": "capacity", "unit": "hours"},
    {"key": "agentic_releasable_hours_per_month", "value": "400", "kind": "number", "group": "capacity", "unit": "hours"},
    {"key": "standard_hours_per_month", "value": "160", "kind": "integer", "group": "capacity", "unit": "hours"},
    {"key": "qa_ratio", "value": "0.5", "kind": "number", "group": "pricing"},
    {"key": "ba_ratio", "value": "0.25", "kind": "number", "group": "pricing"},
    {"key": "margin", "value": "0.2", "kind": "number", "group": "pricing"},
    {"key": "risk", "value": "0.1", "kind": "number", "group": "pricing"},
    {"key": "annual_increase", "value": "0.05", "kind": "number", "group": "compensation"}
  ]
}`

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadDataset resets the store and loads one JSON dataset.
func (h *Handler) loadDataset(ctx context.Context, jsonStr string) error {
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}

	ds, err := h.DatasetFactory.ParseDataset(jsonStr)
	if err != nil {
		return err
	}

	for _, t := range ds.OverheadTypes {
		if err := h.Store.SaveOverheadType(ctx, t); err != nil {
			return err
		}
	}
	for _, e := range ds.Employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}
	for _, s := range ds.Settings {
		if err := h.Store.SaveSetting(ctx, s); err != nil {
			return err
		}
	}
	for _, v := range ds.Views {
		if err := h.Store.SaveView(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func loadSingleDev(ctx context.Context, h *Handler) error {
	return h.loadDataset(ctx, singleDevJSON)
}

func loadFullTeam(ctx context.Context, h *Handler) error {
	return h.loadDataset(ctx, fullTeamJSON)
}

func loadWhatIfView(ctx context.Context, h *Handler) error {
	if err := h.loadDataset(ctx, fullTeamJSON); err != nil {
		return err
	}

	viewID := pricing.ViewID("what-if")
	if err := h.Store.SaveView(ctx, pricing.PricingView{ID: viewID, Name: "What If"}); err != nil {
		return err
	}

	// Bench one developer, raise the margin, and shift a rent share. Base
	// rows stay untouched; the resolver surfaces the differences.
	if err := h.mutator.SetEmployeeActive(ctx, viewID, "dev-go-2", false); err != nil {
		return err
	}
	margin := "0.3"
	if err := h.mutator.SetSetting(ctx, viewID, pricing.KeyMargin, &margin, pricing.KindNumber); err != nil {
		return err
	}
	share := pricing.MustParseDecimal("0.4")
	return h.mutator.SetAllocation(ctx, viewID, "dev-go-1", "rent", &share)
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the scenario registry.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios())
}

// GetCurrentScenario returns the most recently loaded scenario name.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"current": h.currentScenario})
}

// LoadScenario resets the store and loads the named scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, s := range scenarios() {
		if s.Name == req.Name {
			if err := s.load(r.Context(), h); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
				return
			}
			h.currentScenario = s.Name
			writeJSON(w, http.StatusOK, map[string]string{"loaded": s.Name})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Unknown scenario", nil)
}

// ResetDatabase clears every record.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
