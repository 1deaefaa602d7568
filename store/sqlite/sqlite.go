/*
Package sqlite provides a SQLite-backed implementation of views.Store.

PURPOSE:
  Implements every persistence interface of the pricing-view subsystem
  (BaseStore, AdminStore, OverrideStore, BatchStore) using SQLite. The
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees                        base employee records
  overhead_types                   base cost pools
  overhead_allocations             (employee, type) -> share, composite PK
  settings                         typed key/value configuration
  pricing_views                    named scenarios
  employee_active_overrides        sparse per-view active flags
  overhead_type_active_overrides   sparse per-view active flags
  setting_overrides                sparse per-view setting values
  allocation_overrides             sparse per-view shares

SPARSE STORAGE IN SCHEMA:
  Composite PRIMARY KEYs mirror the composite-unique rules of the data
  model: at most one allocation per (employee, type), at most one
  override row per (view, entity). The delete-on-equal collapsing itself
  lives in views/mutations.go, not here.

ATOMIC BATCHES:
  ReplaceAllocations / ReplaceAllocationOverrides run DELETE + INSERTs in
  one database transaction so a concurrent reader never observes a
  partially-updated allocation set.

CONCURRENCY:
  Uses sync.RWMutex on top of WAL mode, as elsewhere in this codebase.

DECIMALS:
  Monetary amounts and shares are stored as TEXT and parsed with
  shopspring/decimal. REAL would reintroduce the float drift the
  calculators avoid.

SEE ALSO:
  - views/store.go: interface definitions and contracts
  - views/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/views"
)

// Store implements views.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Base employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		stack_id TEXT NOT NULL DEFAULT '',
		gross_monthly TEXT NOT NULL,
		net_monthly TEXT NOT NULL DEFAULT '0',
		oncost_rate TEXT,
		annual_benefits TEXT,
		annual_bonus TEXT,
		fte TEXT NOT NULL DEFAULT '1',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_category_stack
		ON employees(category, stack_id);

	-- Base overhead types
	CREATE TABLE IF NOT EXISTS overhead_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		period TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	-- Base allocations: composite-unique, absence means "no allocation"
	CREATE TABLE IF NOT EXISTS overhead_allocations (
		employee_id TEXT NOT NULL,
		overhead_type_id TEXT NOT NULL,
		share TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, overhead_type_id)
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_type
		ON overhead_allocations(overhead_type_id);

	-- Settings: value stored as text, typed by kind
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		kind TEXT NOT NULL,
		grp TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT ''
	);

	-- Pricing views (named scenarios)
	CREATE TABLE IF NOT EXISTS pricing_views (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Sparse override families: a row exists only while it differs
	-- from the base value
	CREATE TABLE IF NOT EXISTS employee_active_overrides (
		view_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		active INTEGER NOT NULL,
		PRIMARY KEY (view_id, employee_id)
	);

	CREATE TABLE IF NOT EXISTS overhead_type_active_overrides (
		view_id TEXT NOT NULL,
		overhead_type_id TEXT NOT NULL,
		active INTEGER NOT NULL,
		PRIMARY KEY (view_id, overhead_type_id)
	);

	CREATE TABLE IF NOT EXISTS setting_overrides (
		view_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (view_id, key)
	);

	CREATE TABLE IF NOT EXISTS allocation_overrides (
		view_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		overhead_type_id TEXT NOT NULL,
		share TEXT NOT NULL,
		PRIMARY KEY (view_id, employee_id, overhead_type_id)
	);

	CREATE INDEX IF NOT EXISTS idx_alloc_overrides_view_type
		ON allocation_overrides(view_id, overhead_type_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// =============================================================================
// BASE READS (views.BaseStore)
// =============================================================================

// ListEmployees returns all employees with their allocation rows attached.
func (s *Store) ListEmployees(ctx context.Context) ([]pricing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, stack_id, gross_monthly, net_monthly,
		       oncost_rate, annual_benefits, annual_bonus, fte, active
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []pricing.Employee
	byID := map[pricing.EmployeeID]int{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		byID[e.ID] = len(employees)
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	allocRows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, overhead_type_id, share
		FROM overhead_allocations ORDER BY employee_id, position, overhead_type_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var empID, typeID, share string
		if err := allocRows.Scan(&empID, &typeID, &share); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if i, ok := byID[pricing.EmployeeID(empID)]; ok {
			employees[i].Allocations = append(employees[i].Allocations, pricing.Allocation{
				OverheadTypeID: pricing.OverheadTypeID(typeID),
				Share:          pricing.MustParseDecimal(share),
			})
		}
	}
	return employees, allocRows.Err()
}

// GetEmployee returns one employee with allocations, or nil when missing.
func (s *Store) GetEmployee(ctx context.Context, id pricing.EmployeeID) (*pricing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, stack_id, gross_monthly, net_monthly,
		       oncost_rate, annual_benefits, annual_bonus, fte, active
		FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT overhead_type_id, share FROM overhead_allocations
		WHERE employee_id = ? ORDER BY position, overhead_type_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeID, share string
		if err := rows.Scan(&typeID, &share); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		e.Allocations = append(e.Allocations, pricing.Allocation{
			OverheadTypeID: pricing.OverheadTypeID(typeID),
			Share:          pricing.MustParseDecimal(share),
		})
	}
	return &e, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (pricing.Employee, error) {
	var (
		e                       pricing.Employee
		gross, net, fte         string
		oncost, benefits, bonus sql.NullString
		active                  int
	)
	err := row.Scan(&e.ID, &e.Name, &e.Category, &e.StackID, &gross, &net,
		&oncost, &benefits, &bonus, &fte, &active)
	if err != nil {
		return e, err
	}
	e.GrossMonthly = pricing.MustParseDecimal(gross)
	e.NetMonthly = pricing.MustParseDecimal(net)
	e.FTE = pricing.MustParseDecimal(fte)
	e.Active = active != 0
	e.OncostRate = nullDecimal(oncost)
	e.AnnualBenefits = nullDecimal(benefits)
	e.AnnualBonus = nullDecimal(bonus)
	return e, nil
}

func nullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := pricing.MustParseDecimal(ns.String)
	return &d
}

// ListOverheadTypes returns all overhead types.
func (s *Store) ListOverheadTypes(ctx context.Context) ([]pricing.OverheadType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, period, active FROM overhead_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overhead types: %w", err)
	}
	defer rows.Close()

	var out []pricing.OverheadType
	for rows.Next() {
		t, err := scanOverheadType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetOverheadType returns one overhead type, or nil when missing.
func (s *Store) GetOverheadType(ctx context.Context, id pricing.OverheadTypeID) (*pricing.OverheadType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, amount, period, active FROM overhead_types WHERE id = ?`, id)
	t, err := scanOverheadType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanOverheadType(row scanner) (pricing.OverheadType, error) {
	var (
		t      pricing.OverheadType
		amount string
		active int
	)
	if err := row.Scan(&t.ID, &t.Name, &amount, &t.Period, &active); err != nil {
		return t, err
	}
	t.Amount = pricing.MustParseDecimal(amount)
	t.Active = active != 0
	return t, nil
}

// ListSettings returns all global settings.
func (s *Store) ListSettings(ctx context.Context) ([]pricing.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, kind, grp, unit FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var out []pricing.Setting
	for rows.Next() {
		var st pricing.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Kind, &st.Group, &st.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetSetting returns one global setting, or nil when missing.
func (s *Store) GetSetting(ctx context.Context, key string) (*pricing.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st pricing.Setting
	err := s.db.QueryRowContext(ctx, `
		SELECT key, value, kind, grp, unit FROM settings WHERE key = ?`, key).
		Scan(&st.Key, &st.Value, &st.Kind, &st.Group, &st.Unit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListViews returns all pricing views.
func (s *Store) ListViews(ctx context.Context) ([]pricing.PricingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM pricing_views ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query views: %w", err)
	}
	defer rows.Close()

	var out []pricing.PricingView
	for rows.Next() {
		var v pricing.PricingView
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetView returns one pricing view, or nil when missing.
func (s *Store) GetView(ctx context.Context, id pricing.ViewID) (*pricing.PricingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v pricing.PricingView
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM pricing_views WHERE id = ?`, id).
		Scan(&v.ID, &v.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// =============================================================================
// BASE WRITES (views.AdminStore)
// =============================================================================

// SaveEmployee upserts an employee and replaces its allocation rows in one
// database transaction.
func (s *Store) SaveEmployee(ctx context.Context, e pricing.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employees
		(id, name, category, stack_id, gross_monthly, net_monthly,
		 oncost_rate, annual_benefits, annual_bonus, fte, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			stack_id = excluded.stack_id,
			gross_monthly = excluded.gross_monthly,
			net_monthly = excluded.net_monthly,
			oncost_rate = excluded.oncost_rate,
			annual_benefits = excluded.annual_benefits,
			annual_bonus = excluded.annual_bonus,
			fte = excluded.fte,
			active = excluded.active`,
		e.ID, e.Name, e.Category, e.StackID,
		e.GrossMonthly.String(), e.NetMonthly.String(),
		decimalOrNull(e.OncostRate), decimalOrNull(e.AnnualBenefits), decimalOrNull(e.AnnualBonus),
		e.FTE.String(), boolToInt(e.Active), now())
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM overhead_allocations WHERE employee_id = ?`, e.ID); err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}
	for i, a := range e.Allocations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO overhead_allocations (employee_id, overhead_type_id, share, position)
			VALUES (?, ?, ?, ?)`,
			e.ID, a.OverheadTypeID, a.Share.String(), i); err != nil {
			return fmt.Errorf("failed to save allocation: %w", err)
		}
	}

	return tx.Commit()
}

// SaveOverheadType upserts an overhead type.
func (s *Store) SaveOverheadType(ctx context.Context, t pricing.OverheadType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overhead_types (id, name, amount, period, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			period = excluded.period,
			active = excluded.active`,
		t.ID, t.Name, t.Amount.String(), t.Period, boolToInt(t.Active), now())
	if err != nil {
		return fmt.Errorf("failed to save overhead type: %w", err)
	}
	return nil
}

// SaveSetting upserts a global setting.
func (s *Store) SaveSetting(ctx context.Context, st pricing.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, kind, grp, unit)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			kind = excluded.kind,
			grp = excluded.grp,
			unit = excluded.unit`,
		st.Key, st.Value, st.Kind, st.Group, st.Unit)
	if err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}

// SaveView upserts a pricing view.
func (s *Store) SaveView(ctx context.Context, v pricing.PricingView) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_views (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		v.ID, v.Name, now())
	if err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}
	return nil
}

// DeleteView removes a view and all of its override rows atomically.
func (s *Store) DeleteView(ctx context.Context, id pricing.ViewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM employee_active_overrides WHERE view_id = ?`,
		`DELETE FROM overhead_type_active_overrides WHERE view_id = ?`,
		`DELETE FROM setting_overrides WHERE view_id = ?`,
		`DELETE FROM allocation_overrides WHERE view_id = ?`,
		`DELETE FROM pricing_views WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete view: %w", err)
		}
	}
	return tx.Commit()
}

// Reset clears every table. Demo/dev use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"allocation_overrides", "setting_overrides",
		"overhead_type_active_overrides", "employee_active_overrides",
		"pricing_views", "settings", "overhead_allocations",
		"overhead_types", "employees",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// OVERRIDE ROWS (views.OverrideStore)
// =============================================================================

func (s *Store) EmployeeActiveOverrides(ctx context.Context, viewID pricing.ViewID) (map[pricing.EmployeeID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, active FROM employee_active_overrides WHERE view_id = ?`, viewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee overrides: %w", err)
	}
	defer rows.Close()

	out := map[pricing.EmployeeID]bool{}
	for rows.Next() {
		var id string
		var active int
		if err := rows.Scan(&id, &active); err != nil {
			return nil, fmt.Errorf("failed to scan employee override: %w", err)
		}
		out[pricing.EmployeeID(id)] = active != 0
	}
	return out, rows.Err()
}

func (s *Store) UpsertEmployeeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.EmployeeID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employee_active_overrides (view_id, employee_id, active)
		VALUES (?, ?, ?)
		ON CONFLICT(view_id, employee_id) DO UPDATE SET active = excluded.active`,
		viewID, id, boolToInt(active))
	return err
}

func (s *Store) DeleteEmployeeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM employee_active_overrides WHERE view_id = ? AND employee_id = ?`,
		viewID, id)
	return err
}

func (s *Store) OverheadTypeActiveOverrides(ctx context.Context, viewID pricing.ViewID) (map[pricing.OverheadTypeID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT overhead_type_id, active FROM overhead_type_active_overrides WHERE view_id = ?`, viewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overhead type overrides: %w", err)
	}
	defer rows.Close()

	out := map[pricing.OverheadTypeID]bool{}
	for rows.Next() {
		var id string
		var active int
		if err := rows.Scan(&id, &active); err != nil {
			return nil, fmt.Errorf("failed to scan overhead type override: %w", err)
		}
		out[pricing.OverheadTypeID(id)] = active != 0
	}
	return out, rows.Err()
}

func (s *Store) UpsertOverheadTypeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overhead_type_active_overrides (view_id, overhead_type_id, active)
		VALUES (?, ?, ?)
		ON CONFLICT(view_id, overhead_type_id) DO UPDATE SET active = excluded.active`,
		viewID, id, boolToInt(active))
	return err
}

func (s *Store) DeleteOverheadTypeActiveOverride(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM overhead_type_active_overrides WHERE view_id = ? AND overhead_type_id = ?`,
		viewID, id)
	return err
}

func (s *Store) SettingOverrides(ctx context.Context, viewID pricing.ViewID) (map[string]pricing.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, kind FROM setting_overrides WHERE view_id = ?`, viewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query setting overrides: %w", err)
	}
	defer rows.Close()

	out := map[string]pricing.Setting{}
	for rows.Next() {
		var st pricing.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan setting override: %w", err)
		}
		out[st.Key] = st
	}
	return out, rows.Err()
}

func (s *Store) UpsertSettingOverride(ctx context.Context, viewID pricing.ViewID, st pricing.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO setting_overrides (view_id, key, value, kind)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(view_id, key) DO UPDATE SET
			value = excluded.value,
			kind = excluded.kind`,
		viewID, st.Key, st.Value, st.Kind)
	return err
}

func (s *Store) DeleteSettingOverride(ctx context.Context, viewID pricing.ViewID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM setting_overrides WHERE view_id = ? AND key = ?`, viewID, key)
	return err
}

func (s *Store) AllocationOverrides(ctx context.Context, viewID pricing.ViewID) (map[views.AllocationKey]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, overhead_type_id, share
		FROM allocation_overrides WHERE view_id = ?`, viewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation overrides: %w", err)
	}
	defer rows.Close()

	out := map[views.AllocationKey]decimal.Decimal{}
	for rows.Next() {
		var empID, typeID, share string
		if err := rows.Scan(&empID, &typeID, &share); err != nil {
			return nil, fmt.Errorf("failed to scan allocation override: %w", err)
		}
		out[views.AllocationKey{
			EmployeeID:     pricing.EmployeeID(empID),
			OverheadTypeID: pricing.OverheadTypeID(typeID),
		}] = pricing.MustParseDecimal(share)
	}
	return out, rows.Err()
}

func (s *Store) UpsertAllocationOverride(ctx context.Context, viewID pricing.ViewID, k views.AllocationKey, share decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allocation_overrides (view_id, employee_id, overhead_type_id, share)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(view_id, employee_id, overhead_type_id) DO UPDATE SET share = excluded.share`,
		viewID, k.EmployeeID, k.OverheadTypeID, share.String())
	return err
}

func (s *Store) DeleteAllocationOverride(ctx context.Context, viewID pricing.ViewID, k views.AllocationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM allocation_overrides
		WHERE view_id = ? AND employee_id = ? AND overhead_type_id = ?`,
		viewID, k.EmployeeID, k.OverheadTypeID)
	return err
}

// =============================================================================
// ATOMIC BATCHES (views.BatchStore)
// =============================================================================

// ReplaceAllocations swaps every base allocation row of one overhead type
// in a single database transaction.
func (s *Store) ReplaceAllocations(ctx context.Context, id pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM overhead_allocations WHERE overhead_type_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}
	for empID, share := range shares {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO overhead_allocations (employee_id, overhead_type_id, share, position)
			VALUES (?, ?, ?, 0)`,
			empID, id, share.String()); err != nil {
			return fmt.Errorf("failed to write allocation: %w", err)
		}
	}
	return tx.Commit()
}

// ReplaceAllocationOverrides swaps every override row of one overhead type
// within one view in a single database transaction.
func (s *Store) ReplaceAllocationOverrides(ctx context.Context, viewID pricing.ViewID, id pricing.OverheadTypeID, shares map[pricing.EmployeeID]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM allocation_overrides WHERE view_id = ? AND overhead_type_id = ?`,
		viewID, id); err != nil {
		return fmt.Errorf("failed to clear allocation overrides: %w", err)
	}
	for empID, share := range shares {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO allocation_overrides (view_id, employee_id, overhead_type_id, share)
			VALUES (?, ?, ?, ?)`,
			viewID, empID, id, share.String()); err != nil {
			return fmt.Errorf("failed to write allocation override: %w", err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decimalOrNull(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
