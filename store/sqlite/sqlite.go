/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements domain.TxStore (Dataset reads, Mutator writes, WithTx batches)
  using SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  resources:   People with roles, skills, and rates
  projects:    Client engagements with requirements and budgets
  allocations: Time-bounded commitments linking resources to projects

READ CONTRACT:
  Resources come back with their allocations attached, so the aggregation
  calculators can run directly over the result.

TRANSACTIONS:
  WithTx wraps the promotion batch in a database transaction: all
  allocation upserts/deletes and project date overwrites commit together
  or roll back together.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/resourcepulse.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - domain/store.go: Interface definitions
  - domain/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// Store implements domain.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT,
		email TEXT,
		skills_json TEXT,
		hourly_rate TEXT NOT NULL DEFAULT '0',
		billable_rate TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'USD',
		weekly_capacity_hours TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		required_skills_json TEXT,
		required_roles_json TEXT,
		budget TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'USD',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS allocations (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		utilization INTEGER NOT NULL,
		hourly_rate TEXT,
		billable_rate TEXT,
		total_hours TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_resource
		ON allocations(resource_id);
	CREATE INDEX IF NOT EXISTS idx_allocations_project
		ON allocations(project_id);
	CREATE INDEX IF NOT EXISTS idx_allocations_resource_dates
		ON allocations(resource_id, start_date, end_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// execer abstracts *sql.DB and *sql.Tx so writes run in either context.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// RESOURCES
// =============================================================================

func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, email, skills_json, hourly_rate, billable_rate,
		       currency, weekly_capacity_hours
		FROM resources ORDER BY id`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list resources", Err: err}
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan resource", Err: err}
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list resources", Err: err}
	}

	allocations, err := s.listAllocationsLocked(ctx)
	if err != nil {
		return nil, err
	}
	byResource := make(map[domain.ResourceID][]domain.Allocation)
	for _, a := range allocations {
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}
	for i := range resources {
		resources[i].Allocations = byResource[resources[i].ID]
	}
	return resources, nil
}

func (s *Store) GetResource(ctx context.Context, id domain.ResourceID) (*domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, email, skills_json, hourly_rate, billable_rate,
		       currency, weekly_capacity_hours
		FROM resources WHERE id = ?`, string(id))

	r, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrResourceNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get resource", Err: err}
	}

	allocations, err := s.allocationsForResourceLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Allocations = allocations
	return &r, nil
}

func (s *Store) SaveResource(ctx context.Context, r domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveResource(ctx, s.db, r)
}

func saveResource(ctx context.Context, db execer, r domain.Resource) error {
	skillsJSON, _ := json.Marshal(r.Skills)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := db.ExecContext(ctx, `
		INSERT INTO resources
			(id, name, role, email, skills_json, hourly_rate, billable_rate,
			 currency, weekly_capacity_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			email = excluded.email,
			skills_json = excluded.skills_json,
			hourly_rate = excluded.hourly_rate,
			billable_rate = excluded.billable_rate,
			currency = excluded.currency,
			weekly_capacity_hours = excluded.weekly_capacity_hours,
			updated_at = excluded.updated_at`,
		string(r.ID), r.Name, r.Role, r.Email, string(skillsJSON),
		r.HourlyRate.String(), r.BillableRate.String(), r.Currency,
		r.WeeklyCapacityHours.String(), now, now)
	if err != nil {
		return &domain.StorageError{Op: "save resource", Err: err}
	}
	return nil
}

func scanResource(row rowScanner) (domain.Resource, error) {
	var r domain.Resource
	var id, skillsJSON, hourly, billable, capacity string
	var role, email sql.NullString

	if err := row.Scan(&id, &r.Name, &role, &email, &skillsJSON,
		&hourly, &billable, &r.Currency, &capacity); err != nil {
		return r, err
	}
	r.ID = domain.ResourceID(id)
	r.Role = role.String
	r.Email = email.String
	if skillsJSON != "" {
		_ = json.Unmarshal([]byte(skillsJSON), &r.Skills)
	}
	r.HourlyRate = mustDecimal(hourly)
	r.BillableRate = mustDecimal(billable)
	r.WeeklyCapacityHours = mustDecimal(capacity)
	return r, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client, start_date, end_date,
		       required_skills_json, required_roles_json, budget, currency
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list projects", Err: err}
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan project", Err: err}
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list projects", Err: err}
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, client, start_date, end_date,
		       required_skills_json, required_roles_json, budget, currency
		FROM projects WHERE id = ?`, string(id))

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get project", Err: err}
	}
	return &p, nil
}

func (s *Store) SaveProject(ctx context.Context, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProject(ctx, s.db, p)
}

func saveProject(ctx context.Context, db execer, p domain.Project) error {
	skillsJSON, _ := json.Marshal(p.RequiredSkills)
	rolesJSON, _ := json.Marshal(p.RequiredRoles)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := db.ExecContext(ctx, `
		INSERT INTO projects
			(id, name, client, start_date, end_date, required_skills_json,
			 required_roles_json, budget, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client = excluded.client,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			required_skills_json = excluded.required_skills_json,
			required_roles_json = excluded.required_roles_json,
			budget = excluded.budget,
			currency = excluded.currency,
			updated_at = excluded.updated_at`,
		string(p.ID), p.Name, p.Client,
		p.StartDate.String(), p.EndDate.String(),
		string(skillsJSON), string(rolesJSON),
		p.Budget.String(), p.Currency, now, now)
	if err != nil {
		return &domain.StorageError{Op: "save project", Err: err}
	}
	return nil
}

func (s *Store) UpdateProjectDates(ctx context.Context, id domain.ProjectID, start, end domain.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateProjectDates(ctx, s.db, id, start, end)
}

func updateProjectDates(ctx context.Context, db execer, id domain.ProjectID, start, end domain.Date) error {
	res, err := db.ExecContext(ctx, `
		UPDATE projects SET start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		start.String(), end.String(),
		time.Now().UTC().Format(time.RFC3339), string(id))
	if err != nil {
		return &domain.StorageError{Op: "update project dates", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row rowScanner) (domain.Project, error) {
	var p domain.Project
	var id, startStr, endStr, budget string
	var client, skillsJSON, rolesJSON sql.NullString

	if err := row.Scan(&id, &p.Name, &client, &startStr, &endStr,
		&skillsJSON, &rolesJSON, &budget, &p.Currency); err != nil {
		return p, err
	}
	p.ID = domain.ProjectID(id)
	p.Client = client.String
	if skillsJSON.String != "" {
		_ = json.Unmarshal([]byte(skillsJSON.String), &p.RequiredSkills)
	}
	if rolesJSON.String != "" {
		_ = json.Unmarshal([]byte(rolesJSON.String), &p.RequiredRoles)
	}
	p.StartDate, _ = domain.ParseDate(startStr)
	p.EndDate, _ = domain.ParseDate(endStr)
	p.Budget = mustDecimal(budget)
	return p, nil
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func (s *Store) ListAllocations(ctx context.Context) ([]domain.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAllocationsLocked(ctx)
}

func (s *Store) listAllocationsLocked(ctx context.Context) ([]domain.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resource_id, project_id, start_date, end_date, utilization,
		       hourly_rate, billable_rate, total_hours
		FROM allocations ORDER BY id`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list allocations", Err: err}
	}
	defer rows.Close()
	return collectAllocations(rows)
}

func (s *Store) allocationsForResourceLocked(ctx context.Context, id domain.ResourceID) ([]domain.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resource_id, project_id, start_date, end_date, utilization,
		       hourly_rate, billable_rate, total_hours
		FROM allocations WHERE resource_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, &domain.StorageError{Op: "list allocations", Err: err}
	}
	defer rows.Close()
	return collectAllocations(rows)
}

func collectAllocations(rows *sql.Rows) ([]domain.Allocation, error) {
	var out []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		var id, resourceID, projectID, startStr, endStr string
		var hourly, billable, hours sql.NullString

		if err := rows.Scan(&id, &resourceID, &projectID, &startStr, &endStr,
			&a.Utilization, &hourly, &billable, &hours); err != nil {
			return nil, &domain.StorageError{Op: "scan allocation", Err: err}
		}
		a.ID = domain.AllocationID(id)
		a.ResourceID = domain.ResourceID(resourceID)
		a.ProjectID = domain.ProjectID(projectID)
		a.StartDate, _ = domain.ParseDate(startStr)
		a.EndDate, _ = domain.ParseDate(endStr)
		a.HourlyRate = nullDecimal(hourly)
		a.BillableRate = nullDecimal(billable)
		a.TotalHours = nullDecimal(hours)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "scan allocation", Err: err}
	}
	return out, nil
}

func (s *Store) UpsertAllocation(ctx context.Context, a domain.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertAllocation(ctx, s.db, a)
}

func upsertAllocation(ctx context.Context, db execer, a domain.Allocation) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
		INSERT INTO allocations
			(id, resource_id, project_id, start_date, end_date, utilization,
			 hourly_rate, billable_rate, total_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resource_id = excluded.resource_id,
			project_id = excluded.project_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			utilization = excluded.utilization,
			hourly_rate = excluded.hourly_rate,
			billable_rate = excluded.billable_rate,
			total_hours = excluded.total_hours,
			updated_at = excluded.updated_at`,
		string(a.ID), string(a.ResourceID), string(a.ProjectID),
		a.StartDate.String(), a.EndDate.String(), a.Utilization,
		decimalOrNull(a.HourlyRate), decimalOrNull(a.BillableRate),
		decimalOrNull(a.TotalHours), now, now)
	if err != nil {
		return &domain.StorageError{Op: "upsert allocation", Err: err}
	}
	return nil
}

func (s *Store) DeleteAllocation(ctx context.Context, id domain.AllocationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAllocation(ctx, s.db, id)
}

func deleteAllocation(ctx context.Context, db execer, id domain.AllocationID) error {
	// Deleting a missing id is not an error; removals stay idempotent.
	if _, err := db.ExecContext(ctx, `DELETE FROM allocations WHERE id = ?`, string(id)); err != nil {
		return &domain.StorageError{Op: "delete allocation", Err: err}
	}
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. If fn returns an
// error the transaction is rolled back; otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn func(domain.Mutator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback()

	if err := fn(&txMutator{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "commit tx", Err: err}
	}
	return nil
}

type txMutator struct {
	tx *sql.Tx
}

func (m *txMutator) SaveResource(ctx context.Context, r domain.Resource) error {
	return saveResource(ctx, m.tx, r)
}

func (m *txMutator) SaveProject(ctx context.Context, p domain.Project) error {
	return saveProject(ctx, m.tx, p)
}

func (m *txMutator) UpsertAllocation(ctx context.Context, a domain.Allocation) error {
	return upsertAllocation(ctx, m.tx, a)
}

func (m *txMutator) DeleteAllocation(ctx context.Context, id domain.AllocationID) error {
	return deleteAllocation(ctx, m.tx, id)
}

func (m *txMutator) UpdateProjectDates(ctx context.Context, id domain.ProjectID, start, end domain.Date) error {
	return updateProjectDates(ctx, m.tx, id, start, end)
}

// =============================================================================
// HELPERS
// =============================================================================

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := mustDecimal(ns.String)
	return &d
}

func decimalOrNull(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
