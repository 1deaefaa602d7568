package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pricing-engine/api"
	"github.com/warp/pricing-engine/views/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	h := api.NewHandler(store.NewMemory())
	return api.NewRouter(h, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func loadScenario(t *testing.T, h http.Handler, name string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/scenarios/load", map[string]string{"name": name})
	require.Equal(t, http.StatusOK, rec.Code, "loading scenario %s: %s", name, rec.Body)
}

// =============================================================================
// QUOTE ENDPOINT TESTS
// =============================================================================

func TestGetQuotes_SingleDevScenario(t *testing.T) {
	// GIVEN: The single-dev scenario
	// WHEN: Fetching all quotes
	// THEN: One DEV quote with the documented reference numbers

	h := newTestServer(t)
	loadScenario(t, h, "single-dev")

	rec := do(t, h, http.MethodGet, "/api/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quotes []api.QuoteDTO
	decodeBody(t, rec, &quotes)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, "DEV", q.Category)
	assert.Equal(t, 100.0, q.CapacityHours)
	require.NotNil(t, q.CostPerRelHour)
	assert.InDelta(t, 122.5, *q.CostPerRelHour, 1e-9)
	require.NotNil(t, q.FinalPrice)
	assert.InDelta(t, 161.7, *q.FinalPrice, 1e-9)
	assert.Zero(t, q.QAAddOnPerHour)
	assert.Zero(t, q.BAAddOnPerHour)
}

func TestGetQuote_WithBreakdown(t *testing.T) {
	h := newTestServer(t)
	loadScenario(t, h, "single-dev")

	rec := do(t, h, http.MethodGet, "/api/quotes/DEV?breakdown=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var q api.QuoteDTO
	decodeBody(t, rec, &q)
	assert.NotEmpty(t, q.Breakdown, "breakdown steps should be attached")
}

func TestGetQuote_RejectsUnpricedCategory(t *testing.T) {
	h := newTestServer(t)
	loadScenario(t, h, "single-dev")

	rec := do(t, h, http.MethodGet, "/api/quotes/QA", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuotes_ZeroCapacityIsUnprocessable(t *testing.T) {
	// GIVEN: A developer with fte 0 - valid to store, unusable to price
	// WHEN: Fetching quotes
	// THEN: 422, not 500 and not a silent zero

	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/employees", map[string]any{
		"id": "dev-0", "name": "Benched", "category": "DEV",
		"gross_monthly": "10000", "fte": "0",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/quotes", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// =============================================================================
// BASE DATA ENDPOINT TESTS
// =============================================================================

func TestSaveEmployee_RejectsShareOutOfRange(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/employees", map[string]any{
		"id": "dev-1", "name": "Dana", "category": "DEV",
		"gross_monthly": "10000",
		"allocations":   []map[string]string{{"overhead_type_id": "rent", "share": "1.5"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmployee_NotFound(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// VIEW AND OVERRIDE ENDPOINT TESTS
// =============================================================================

func TestViewLifecycle(t *testing.T) {
	h := newTestServer(t)
	loadScenario(t, h, "full-team")

	rec := do(t, h, http.MethodPost, "/api/views", map[string]string{"id": "v1", "name": "V1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/views/v1/settings/margin", map[string]any{"value": "0.3"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/views/v1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/views/v1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOverride_UnknownViewIsNotFound(t *testing.T) {
	h := newTestServer(t)
	loadScenario(t, h, "full-team")

	rec := do(t, h, http.MethodPut, "/api/views/ghost/employees/dev-go-1/active", map[string]bool{"active": false})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQuotes_ViewRaisesMarginWithoutTouchingBase(t *testing.T) {
	// GIVEN: The what-if-view scenario (margin 0.3 inside the view, 0.2 base)
	// WHEN: Fetching the go DEV quote with and without ?view=
	// THEN: The viewed price is higher; the base price is unchanged

	h := newTestServer(t)
	loadScenario(t, h, "what-if-view")

	var base, viewed api.QuoteDTO
	rec := do(t, h, http.MethodGet, "/api/quotes/DEV?stack=go", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &base)

	rec = do(t, h, http.MethodGet, "/api/quotes/DEV?stack=go&view=what-if", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &viewed)

	require.NotNil(t, base.FinalPrice)
	require.NotNil(t, viewed.FinalPrice)
	assert.Greater(t, *viewed.FinalPrice, *base.FinalPrice)
}

func TestGetEffective_UnknownView(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/effective?view=ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEffective_ViewBenchesEmployee(t *testing.T) {
	h := newTestServer(t)
	loadScenario(t, h, "what-if-view")

	var base, viewed api.ResolutionDTO
	rec := do(t, h, http.MethodGet, "/api/effective", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &base)

	rec = do(t, h, http.MethodGet, "/api/effective?view=what-if", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &viewed)

	assert.Len(t, viewed.Employees, len(base.Employees)-1, "dev-go-2 is benched inside the view")
	for _, e := range viewed.Employees {
		assert.NotEqual(t, "dev-go-2", e.ID)
	}
}

// =============================================================================
// DIAGNOSTICS AND ALLOCATION ENDPOINT TESTS
// =============================================================================

func TestGetDiagnostics_FullTeam(t *testing.T) {
	// full-team allocates both pools with five 0.2 shares each.
	h := newTestServer(t)
	loadScenario(t, h, "full-team")

	rec := do(t, h, http.MethodGet, "/api/diagnostics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OverheadTypes []api.DiagnosticDTO `json:"overhead_types"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.OverheadTypes, 2)
	for _, d := range resp.OverheadTypes {
		assert.True(t, d.FullyAllocated, "%s should be fully allocated", d.OverheadTypeID)
		assert.InDelta(t, 1.0, d.ShareSum, 1e-9)
	}
}

func TestAllocateEqually_Endpoint(t *testing.T) {
	h := newTestServer(t)
	loadScenario(t, h, "full-team")

	rec := do(t, h, http.MethodPost, "/api/overhead-types/rent/allocate/equal", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/overhead-types/ghost/allocate/equal", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SCENARIO ENDPOINT TESTS
// =============================================================================

func TestScenarios_ListLoadReset(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []api.Scenario
	decodeBody(t, rec, &list)
	assert.Len(t, list, 3)

	rec = do(t, h, http.MethodPost, "/api/scenarios/load", map[string]string{"name": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	loadScenario(t, h, "single-dev")
	rec = do(t, h, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cur map[string]string
	decodeBody(t, rec, &cur)
	assert.Equal(t, "single-dev", cur["current"])

	rec = do(t, h, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var emps []api.EmployeeDTO
	decodeBody(t, rec, &emps)
	assert.Empty(t, emps)
}
