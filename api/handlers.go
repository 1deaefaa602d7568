/*
handlers.go - HTTP API handlers for the pricing engine

PURPOSE:
  Exposes the pricing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Base data:
    GET    /api/employees                 List base employees
    POST   /api/employees                 Create/update employee
    GET    /api/employees/{id}            Get employee
    GET    /api/overhead-types            List overhead types
    POST   /api/overhead-types            Create/update overhead type
    GET    /api/settings                  List global settings
    POST   /api/settings                  Create/update setting

  Views and overrides:
    GET    /api/views                     List pricing views
    POST   /api/views                     Create view
    DELETE /api/views/{id}                Delete view and its overrides
    PUT    /api/views/{id}/employees/{empID}/active        Override flag
    PUT    /api/views/{id}/overhead-types/{typeID}/active  Override flag
    PUT    /api/views/{id}/settings/{key}                  Override setting
    PUT    /api/views/{id}/allocations/{empID}/{typeID}    Override share

  Computation (all accept ?view=ID):
    GET    /api/effective                 Effective dataset
    GET    /api/quotes                    All quotes (?breakdown=true)
    GET    /api/quotes/{category}         One quote (?stack=...)
    GET    /api/diagnostics               Allocation sum diagnostics
    POST   /api/overhead-types/{id}/allocate/equal
    POST   /api/overhead-types/{id}/allocate/proportional
    POST   /api/overhead-types/{id}/allocate/normalize

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Reset database

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (resolver, mutator, distributor, engine)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 422: Fatal computational errors (unusable input data)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/factory"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/views"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          views.Store
	DatasetFactory *factory.DatasetFactory

	resolver    *views.Resolver
	mutator     *views.Mutator
	distributor *views.Distributor

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store.
func NewHandler(store views.Store) *Handler {
	return &Handler{
		Store:          store,
		DatasetFactory: factory.NewDatasetFactory(),
		resolver:       views.NewResolver(store),
		mutator:        views.NewMutator(store),
		distributor:    views.NewDistributor(store),
	}
}

// viewParam reads the optional ?view= query parameter.
func viewParam(r *http.Request) *pricing.ViewID {
	if raw := r.URL.Query().Get("view"); raw != "" {
		id := pricing.ViewID(raw)
		return &id
	}
	return nil
}

// =============================================================================
// BASE DATA HANDLERS
// =============================================================================

// ListEmployees returns all base employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = employeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single base employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := pricing.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, employeeDTO(*emp))
}

// SaveEmployee creates or updates a base employee. The payload uses the
// factory JSON schema.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req factory.EmployeeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ds, err := h.DatasetFactory.FromJSON(factory.DatasetJSON{Employees: []factory.EmployeeJSON{req}})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}

	e := ds.Employees[0]
	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, employeeDTO(e))
}

// ListOverheadTypes returns all base overhead types.
func (h *Handler) ListOverheadTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListOverheadTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overhead types", err)
		return
	}

	dtos := make([]OverheadTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = overheadTypeDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOverheadType returns a single base overhead type.
func (h *Handler) GetOverheadType(w http.ResponseWriter, r *http.Request) {
	id := pricing.OverheadTypeID(chi.URLParam(r, "id"))

	ot, err := h.Store.GetOverheadType(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get overhead type", err)
		return
	}
	if ot == nil {
		writeError(w, http.StatusNotFound, "Overhead type not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, overheadTypeDTO(*ot))
}

// SaveOverheadType creates or updates a base overhead type.
func (h *Handler) SaveOverheadType(w http.ResponseWriter, r *http.Request) {
	var req factory.OverheadTypeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ds, err := h.DatasetFactory.FromJSON(factory.DatasetJSON{OverheadTypes: []factory.OverheadTypeJSON{req}})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid overhead type", err)
		return
	}

	t := ds.OverheadTypes[0]
	if err := h.Store.SaveOverheadType(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save overhead type", err)
		return
	}
	writeJSON(w, http.StatusCreated, overheadTypeDTO(t))
}

// ListSettings returns all global settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.ListSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings", err)
		return
	}

	dtos := make([]SettingDTO, len(settings))
	for i, s := range settings {
		dtos[i] = settingDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveSetting creates or updates a global setting.
func (h *Handler) SaveSetting(w http.ResponseWriter, r *http.Request) {
	var req factory.SettingJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ds, err := h.DatasetFactory.FromJSON(factory.DatasetJSON{Settings: []factory.SettingJSON{req}})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid setting", err)
		return
	}

	s := ds.Settings[0]
	if err := h.Store.SaveSetting(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting", err)
		return
	}
	writeJSON(w, http.StatusCreated, settingDTO(s))
}

// =============================================================================
// VIEW HANDLERS
// =============================================================================

// ListViews returns all pricing views.
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Store.ListViews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list views", err)
		return
	}

	dtos := make([]ViewDTO, len(vs))
	for i, v := range vs {
		dtos[i] = ViewDTO{ID: string(v.ID), Name: v.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateView creates a pricing view.
func (h *Handler) CreateView(w http.ResponseWriter, r *http.Request) {
	var req SaveViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "View name is required", nil)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	v := pricing.PricingView{ID: pricing.ViewID(id), Name: req.Name}
	if err := h.Store.SaveView(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save view", err)
		return
	}
	writeJSON(w, http.StatusCreated, ViewDTO{ID: id, Name: v.Name})
}

// DeleteView removes a view and all of its overrides.
func (h *Handler) DeleteView(w http.ResponseWriter, r *http.Request) {
	id := pricing.ViewID(chi.URLParam(r, "id"))

	v, err := h.Store.GetView(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get view", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "View not found", nil)
		return
	}

	if err := h.Store.DeleteView(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete view", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// OVERRIDE HANDLERS
// =============================================================================

// OverrideEmployeeActive overrides one employee's active flag within a view.
func (h *Handler) OverrideEmployeeActive(w http.ResponseWriter, r *http.Request) {
	viewID := pricing.ViewID(chi.URLParam(r, "id"))
	empID := pricing.EmployeeID(chi.URLParam(r, "empID"))

	var req ActiveOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.mutator.SetEmployeeActive(r.Context(), viewID, empID, req.Active); err != nil {
		writeDomainError(w, "Failed to override employee flag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OverrideOverheadTypeActive overrides one overhead type's active flag
// within a view.
func (h *Handler) OverrideOverheadTypeActive(w http.ResponseWriter, r *http.Request) {
	viewID := pricing.ViewID(chi.URLParam(r, "id"))
	typeID := pricing.OverheadTypeID(chi.URLParam(r, "typeID"))

	var req ActiveOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.mutator.SetOverheadTypeActive(r.Context(), viewID, typeID, req.Active); err != nil {
		writeDomainError(w, "Failed to override overhead type flag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OverrideSetting overrides one setting within a view. A null value is an
// explicit revert to the global setting.
func (h *Handler) OverrideSetting(w http.ResponseWriter, r *http.Request) {
	viewID := pricing.ViewID(chi.URLParam(r, "id"))
	key := chi.URLParam(r, "key")

	var req SettingOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	kind := pricing.SettingKind(req.Kind)
	if kind == "" {
		kind = pricing.KindNumber
	}
	if err := h.mutator.SetSetting(r.Context(), viewID, key, req.Value, kind); err != nil {
		writeDomainError(w, "Failed to override setting", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OverrideAllocation overrides one (employee, overhead type) share within a
// view. A null share is an explicit revert to the base row.
func (h *Handler) OverrideAllocation(w http.ResponseWriter, r *http.Request) {
	viewID := pricing.ViewID(chi.URLParam(r, "id"))
	empID := pricing.EmployeeID(chi.URLParam(r, "empID"))
	typeID := pricing.OverheadTypeID(chi.URLParam(r, "typeID"))

	var req AllocationOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	share, err := parseOptionalShare(req.Share)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid share", err)
		return
	}

	if err := h.mutator.SetAllocation(r.Context(), viewID, empID, typeID, share); err != nil {
		writeDomainError(w, "Failed to override allocation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COMPUTATION HANDLERS
// =============================================================================

// GetEffective returns the effective dataset for an optional view.
func (h *Handler) GetEffective(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.Resolve(r.Context(), viewParam(r))
	if err != nil {
		writeDomainError(w, "Failed to resolve dataset", err)
		return
	}

	dto := ResolutionDTO{
		Employees: []EmployeeDTO{},
		Overheads: []OverheadTypeDTO{},
		Settings:  map[string]float64{},
	}
	if res.View != nil {
		dto.View = &ViewDTO{ID: string(res.View.ID), Name: res.View.Name}
	}
	for _, e := range res.Dataset.Employees {
		dto.Employees = append(dto.Employees, employeeDTO(e))
	}
	for _, t := range res.Dataset.OverheadTypes {
		dto.Overheads = append(dto.Overheads, overheadTypeDTO(t))
	}
	for k, v := range res.Dataset.Settings {
		dto.Settings[k] = v.InexactFloat64()
	}
	for _, o := range res.Orphaned {
		dto.Orphaned = append(dto.Orphaned, OrphanDTO{
			EmployeeID:     string(o.EmployeeID),
			OverheadTypeID: string(o.OverheadTypeID),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetQuotes returns a quote for every (priced category, stack) group in the
// effective dataset. ?breakdown=true attaches the explain trace.
func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.Resolve(r.Context(), viewParam(r))
	if err != nil {
		writeDomainError(w, "Failed to resolve dataset", err)
		return
	}

	engine := pricing.NewEngine(res.Dataset)
	quotes, err := engine.QuoteAll(r.URL.Query().Get("breakdown") == "true")
	if err != nil {
		writeDomainError(w, "Failed to compute quotes", err)
		return
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = quoteDTO(q)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetQuote returns the quote for one category and optional stack.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	category := pricing.Category(chi.URLParam(r, "category"))
	switch category {
	case pricing.CategoryDev, pricing.CategoryAgenticAI:
	default:
		writeError(w, http.StatusBadRequest, "Category must be DEV or AGENTIC_AI", nil)
		return
	}

	res, err := h.resolver.Resolve(r.Context(), viewParam(r))
	if err != nil {
		writeDomainError(w, "Failed to resolve dataset", err)
		return
	}

	engine := pricing.NewEngine(res.Dataset)
	stack := pricing.StackID(r.URL.Query().Get("stack"))
	quote, err := engine.Quote(category, stack, r.URL.Query().Get("breakdown") == "true")
	if err != nil {
		writeDomainError(w, "Failed to compute quote", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteDTO(quote))
}

// GetDiagnostics returns allocation-sum diagnostics plus orphaned rows for
// the effective dataset.
func (h *Handler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.Resolve(r.Context(), viewParam(r))
	if err != nil {
		writeDomainError(w, "Failed to resolve dataset", err)
		return
	}

	engine := pricing.NewEngine(res.Dataset)
	diags := engine.OverheadDiagnostics()

	dtos := make([]DiagnosticDTO, len(diags))
	for i, d := range diags {
		dto := DiagnosticDTO{
			OverheadTypeID: string(d.OverheadTypeID),
			Name:           d.Name,
			ShareSum:       d.ShareSum.InexactFloat64(),
			FullyAllocated: d.FullyAllocated,
		}
		for _, id := range d.Unallocated {
			dto.Unallocated = append(dto.Unallocated, string(id))
		}
		dtos[i] = dto
	}

	var orphans []OrphanDTO
	for _, o := range res.Orphaned {
		orphans = append(orphans, OrphanDTO{
			EmployeeID:     string(o.EmployeeID),
			OverheadTypeID: string(o.OverheadTypeID),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overhead_types":       dtos,
		"orphaned_allocations": orphans,
	})
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// AllocateEqually distributes one overhead type equally across active
// employees. With ?view=ID the result lands in override rows only.
func (h *Handler) AllocateEqually(w http.ResponseWriter, r *http.Request) {
	typeID := pricing.OverheadTypeID(chi.URLParam(r, "id"))
	if err := h.distributor.AllocateEqually(r.Context(), viewParam(r), typeID); err != nil {
		writeDomainError(w, "Failed to allocate equally", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AllocateProportionally distributes one overhead type proportionally to
// adjusted gross pay.
func (h *Handler) AllocateProportionally(w http.ResponseWriter, r *http.Request) {
	typeID := pricing.OverheadTypeID(chi.URLParam(r, "id"))
	if err := h.distributor.AllocateProportionalToGross(r.Context(), viewParam(r), typeID); err != nil {
		writeDomainError(w, "Failed to allocate proportionally", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NormalizeAllocations rescales one overhead type's current shares to sum
// to 100% while preserving proportions.
func (h *Handler) NormalizeAllocations(w http.ResponseWriter, r *http.Request) {
	typeID := pricing.OverheadTypeID(chi.URLParam(r, "id"))
	if err := h.distributor.NormalizeShares(r.Context(), viewParam(r), typeID); err != nil {
		writeDomainError(w, "Failed to normalize allocations", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseOptionalShare parses a nullable decimal string. nil stays nil.
func parseOptionalShare(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
