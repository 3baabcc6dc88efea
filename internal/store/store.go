// Package store provides the shared business dataset behind the ERP.
package store

import (
	"context"
	"errors"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
)

// ErrNotFound is returned when update/delete cannot locate the record.
var ErrNotFound = errors.New("store: record not found")

// ErrMissingRequired is returned when add is missing a required field.
var ErrMissingRequired = errors.New("store: missing required field")

// Broadcaster receives a change event for every successful mutation.
type Broadcaster interface {
	DataUpdate(event domain.DataEvent) error
}

// Store is the entity repository. Mutations are serialized internally so
// concurrent voice sessions cannot interleave partial updates to the same
// record, and each successful mutation emits exactly one change event.
type Store interface {
	// List returns every record of the kind.
	List(ctx context.Context, kind domain.Kind) ([]domain.Record, error)

	// Add validates required fields, generates an id, fills defaults and
	// inserts the record. Returns the full stored record.
	Add(ctx context.Context, kind domain.Kind, fields domain.Record) (domain.Record, error)

	// Update applies the supplied fields to the record addressed by the
	// table's lookup column (the employee code for employees, id otherwise).
	// Unknown columns are ignored; empty strings clear the column.
	Update(ctx context.Context, kind domain.Kind, id string, fields domain.Record) (domain.Record, error)

	// Delete removes the record addressed by the lookup column and returns it.
	Delete(ctx context.Context, kind domain.Kind, id string) (domain.Record, error)

	// Counts returns the number of records per entity kind for the dashboard.
	Counts(ctx context.Context) (map[string]int, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying database.
	Close() error
}
