// Package store provides an in-memory Store implementation (for testing/dev).
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of domain.TxStore
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	resources   map[domain.ResourceID]domain.Resource
	projects    map[domain.ProjectID]domain.Project
	allocations map[domain.AllocationID]domain.Allocation

	// failAfter injects a storage fault: writes inside WithTx fail once the
	// counter reaches zero. Used to exercise rollback behavior.
	failAfter int
	failing   bool
}

var errInjectedFault = errors.New("injected storage fault")

func NewMemory() *Memory {
	return &Memory{
		resources:   make(map[domain.ResourceID]domain.Resource),
		projects:    make(map[domain.ProjectID]domain.Project),
		allocations: make(map[domain.AllocationID]domain.Allocation),
	}
}

// FailWritesAfter arms fault injection: the nth subsequent write inside a
// WithTx batch fails with a storage error.
func (m *Memory) FailWritesAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.failing = true
}

// =============================================================================
// READS
// =============================================================================

func (m *Memory) ListResources(_ context.Context) ([]domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Resource, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, m.attachAllocations(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetResource(_ context.Context, id domain.ResourceID) (*domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resources[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	attached := m.attachAllocations(r)
	return &attached, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetProject(_ context.Context, id domain.ProjectID) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (m *Memory) ListAllocations(_ context.Context) ([]domain.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allocationsLocked(), nil
}

func (m *Memory) allocationsLocked() []domain.Allocation {
	out := make([]domain.Allocation, 0, len(m.allocations))
	for _, a := range m.allocations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// attachAllocations populates the resource's allocation list from the
// allocations table. The stored record's own list is ignored; the table is
// the source of truth.
func (m *Memory) attachAllocations(r domain.Resource) domain.Resource {
	var list []domain.Allocation
	for _, a := range m.allocations {
		if a.ResourceID == r.ID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	r.Allocations = list
	r.Allocation = nil
	return r
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) SaveResource(_ context.Context, r domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveResourceLocked(r)
}

func (m *Memory) saveResourceLocked(r domain.Resource) error {
	if err := m.countWrite(); err != nil {
		return err
	}
	// Allocations live in their own table; strip both representations and
	// index any attached records by id.
	for _, a := range r.Allocations {
		if a.ID != "" {
			m.allocations[a.ID] = a
		}
	}
	if r.Allocation != nil && r.Allocation.ID != "" {
		m.allocations[r.Allocation.ID] = *r.Allocation
	}
	r.Allocations = nil
	r.Allocation = nil
	m.resources[r.ID] = r
	return nil
}

func (m *Memory) SaveProject(_ context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveProjectLocked(p)
}

func (m *Memory) saveProjectLocked(p domain.Project) error {
	if err := m.countWrite(); err != nil {
		return err
	}
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) UpsertAllocation(_ context.Context, a domain.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertAllocationLocked(a)
}

func (m *Memory) upsertAllocationLocked(a domain.Allocation) error {
	if err := m.countWrite(); err != nil {
		return err
	}
	m.allocations[a.ID] = a
	return nil
}

func (m *Memory) DeleteAllocation(_ context.Context, id domain.AllocationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteAllocationLocked(id)
}

func (m *Memory) deleteAllocationLocked(id domain.AllocationID) error {
	if err := m.countWrite(); err != nil {
		return err
	}
	delete(m.allocations, id)
	return nil
}

func (m *Memory) UpdateProjectDates(_ context.Context, id domain.ProjectID, start, end domain.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateProjectDatesLocked(id, start, end)
}

func (m *Memory) updateProjectDatesLocked(id domain.ProjectID, start, end domain.Date) error {
	if err := m.countWrite(); err != nil {
		return err
	}
	p, ok := m.projects[id]
	if !ok {
		return domain.ErrProjectNotFound
	}
	p.StartDate = start
	p.EndDate = end
	m.projects[id] = p
	return nil
}

func (m *Memory) countWrite() error {
	if !m.failing {
		return nil
	}
	if m.failAfter <= 0 {
		return &domain.StorageError{Op: "write", Err: errInjectedFault}
	}
	m.failAfter--
	return nil
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback on error
// =============================================================================

// WithTx executes fn atomically. The memory store simulates a database
// transaction with a full snapshot restored on error.
func (m *Memory) WithTx(ctx context.Context, fn func(domain.Mutator) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	resources   map[domain.ResourceID]domain.Resource
	projects    map[domain.ProjectID]domain.Project
	allocations map[domain.AllocationID]domain.Allocation
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		resources:   make(map[domain.ResourceID]domain.Resource, len(m.resources)),
		projects:    make(map[domain.ProjectID]domain.Project, len(m.projects)),
		allocations: make(map[domain.AllocationID]domain.Allocation, len(m.allocations)),
	}
	for k, v := range m.resources {
		s.resources[k] = v
	}
	for k, v := range m.projects {
		s.projects[k] = v
	}
	for k, v := range m.allocations {
		s.allocations[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.resources = s.resources
	m.projects = s.projects
	m.allocations = s.allocations
}

// txView routes writes to the locked parent without re-acquiring the mutex.
type txView struct {
	parent *Memory
}

func (v *txView) SaveResource(_ context.Context, r domain.Resource) error {
	return v.parent.saveResourceLocked(r)
}

func (v *txView) SaveProject(_ context.Context, p domain.Project) error {
	return v.parent.saveProjectLocked(p)
}

func (v *txView) UpsertAllocation(_ context.Context, a domain.Allocation) error {
	return v.parent.upsertAllocationLocked(a)
}

func (v *txView) DeleteAllocation(_ context.Context, id domain.AllocationID) error {
	return v.parent.deleteAllocationLocked(id)
}

func (v *txView) UpdateProjectDates(_ context.Context, id domain.ProjectID, start, end domain.Date) error {
	return v.parent.updateProjectDatesLocked(id, start, end)
}
