/*
store.go - Persistence interface for the live dataset

PURPOSE:
  Defines the interface between the engine and the external persistence
  collaborator. The engine reads the live dataset through Dataset; the
  promotion coordinator writes through Mutator inside a WithTx batch.

READ CONTRACT:
  Resources returned by ListResources/GetResource carry their allocations
  attached (the Allocations list populated). Reads fail open: an error
  propagates to the caller with no partial result.

WRITE CONTRACT:
  All live mutation flows through WithTx. Either the whole batch commits
  or none of it does; partial promotion must never be observable.

IMPLEMENTATIONS:
  - store/sqlite:      Production SQLite store
  - domain/store:      In-memory store for tests (with fault injection)
*/
package domain

import "context"

// =============================================================================
// DATASET - Read side of the persistence collaborator
// =============================================================================

type Dataset interface {
	// ListResources returns all resources with allocations attached.
	ListResources(ctx context.Context) ([]Resource, error)

	// GetResource returns one resource with allocations attached, or
	// ErrResourceNotFound.
	GetResource(ctx context.Context, id ResourceID) (*Resource, error)

	// ListProjects returns all projects.
	ListProjects(ctx context.Context) ([]Project, error)

	// GetProject returns one project, or ErrProjectNotFound.
	GetProject(ctx context.Context, id ProjectID) (*Project, error)

	// ListAllocations returns every live allocation.
	ListAllocations(ctx context.Context) ([]Allocation, error)
}

// =============================================================================
// MUTATOR - Write side, used inside promotion batches
// =============================================================================

type Mutator interface {
	SaveResource(ctx context.Context, r Resource) error
	SaveProject(ctx context.Context, p Project) error

	// UpsertAllocation replaces the allocation with the same id, or inserts
	// it when the id is new.
	UpsertAllocation(ctx context.Context, a Allocation) error

	// DeleteAllocation removes a live allocation. Deleting an id that does
	// not exist is not an error; promotion removals must be idempotent.
	DeleteAllocation(ctx context.Context, id AllocationID) error

	// UpdateProjectDates overwrites a project's start/end dates.
	UpdateProjectDates(ctx context.Context, id ProjectID, start, end Date) error
}

// Store combines reads and writes.
type Store interface {
	Dataset
	Mutator
}

// =============================================================================
// TRANSACTIONAL STORE - For the atomic promotion batch
// =============================================================================

// TxStore wraps Store with transaction support. If fn returns an error the
// batch rolls back in full; otherwise it commits.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Mutator) error) error
}

// =============================================================================
// BASELINE - One consistent read of the live dataset
// =============================================================================

// Baseline is a point-in-time copy of the live dataset that calculators and
// the overlay resolver operate on.
type Baseline struct {
	Resources   []Resource
	Projects    []Project
	Allocations []Allocation
}

// ReadBaseline takes one consistent read of the live dataset.
func ReadBaseline(ctx context.Context, ds Dataset) (*Baseline, error) {
	resources, err := ds.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := ds.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := ds.ListAllocations(ctx)
	if err != nil {
		return nil, err
	}
	return &Baseline{Resources: resources, Projects: projects, Allocations: allocations}, nil
}
