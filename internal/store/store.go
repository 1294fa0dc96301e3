// Package store defines the data access contract of the FibraDoc service
// and its PostgreSQL implementation.
//
// Every collection is served by the same generic Repository. Domain rules
// that must hold under concurrent writes (box provisioning, deletion guards,
// tray slot limits, the port and client link) run inside the write
// transaction.
package store

import (
	"context"
	"errors"

	"github.com/fibradoc/fibradoc/internal/model"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a write would violate a uniqueness
	// constraint (e.g., duplicate port number in a box).
	ErrConflict = errors.New("resource conflict")

	// ErrHasDependents is returned when deleting a resource that other
	// records still reference (e.g., a box with fusions).
	ErrHasDependents = errors.New("resource has dependents")

	// ErrCapacityExceeded is returned when a write would overfill a
	// bounded container (e.g., a 13th fusion on a tray).
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidReference is returned when a write points at a record that
	// does not exist or does not belong to the expected parent.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrLinkConflict is returned when a port or client is already linked
	// to someone else, or the port cannot take a client.
	ErrLinkConflict = errors.New("port or client already linked")

	// ErrInvalidFilter is returned when a list filter value cannot be
	// interpreted (e.g., a non-numeric cable type).
	ErrInvalidFilter = errors.New("invalid filter")
)

// ---------------------------------------------------------------------------
// List options
// ---------------------------------------------------------------------------

// ListOptions carries pagination, free-text search and filter parameters.
// Filter keys are the public query parameter names (e.g. "cidadeId"); keys
// a collection does not know are ignored.
type ListOptions struct {
	Limit   int
	Offset  int
	Search  string
	Filters map[string]string
}

// ---------------------------------------------------------------------------
// Store interface
// ---------------------------------------------------------------------------

// Repository is the CRUD contract shared by every collection.
type Repository[M any] interface {
	// List returns one page of records and the total matching count.
	List(ctx context.Context, opts ListOptions) ([]M, int, error)

	// Get returns a single record or ErrNotFound.
	Get(ctx context.Context, id string) (M, error)

	// Create inserts a record with a generated ID and returns it as stored.
	Create(ctx context.Context, m M) (M, error)

	// Update replaces the writable fields of the record with the given ID.
	Update(ctx context.Context, id string, m M) (M, error)

	// Delete removes a record. Deleting an absent ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// PortRepository adds batch maintenance of a box's ports.
type PortRepository interface {
	Repository[model.Port]

	// ReplaceForBox upserts ports by number for the given box and returns
	// every port of the box ordered by number.
	ReplaceForBox(ctx context.Context, boxID string, ports []model.Port) ([]model.Port, error)
}

// Store groups the repositories of every collection.
type Store interface {
	// Ping checks database connectivity. Used by the readiness probe.
	Ping(ctx context.Context) error

	Cities() Repository[model.City]
	Boxes() Repository[model.Box]
	Ports() PortRepository
	Trays() Repository[model.Tray]
	Splitters() Repository[model.Splitter]
	Capillaries() Repository[model.Capillary]
	Routes() Repository[model.Route]
	Tubes() Repository[model.Tube]
	Fusions() Repository[model.Fusion]
	Clients() Repository[model.Client]
}
