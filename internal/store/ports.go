// Package store defines the ports for the durable entry store. The
// concrete backend is a document store keyed by entry id; implementations
// live in the subpackages and in internal/adapters.
package store

import (
	"context"
	"errors"

	"desayunos/internal/core"
)

var (
	// ErrNotFound is returned when an operation references an entry id
	// that does not exist in the store.
	ErrNotFound = errors.New("entry not found")

	// ErrUnavailable wraps transport or persistence failures of the
	// backing store.
	ErrUnavailable = errors.New("entry store unavailable")
)

// Ports for outbound adapters.
type (
	EntryLister interface {
		// ListAll returns every entry in the store, newest first.
		ListAll(ctx context.Context) ([]core.Entry, error)
	}

	EntryCreator interface {
		// Create persists a new entry and returns the assigned id.
		Create(ctx context.Context, e core.Entry) (id string, err error)
	}

	EntryUpdater interface {
		// Update replaces payer and participants of an existing entry.
		// The date is immutable once recorded.
		Update(ctx context.Context, id string, payer string, participants []string) error
	}

	EntryDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// EntryStore is the full CRUD contract the ledger controller needs.
	EntryStore interface {
		EntryLister
		EntryCreator
		EntryUpdater
		EntryDeleter
	}

	// EntryMirror is the write-side contract of a secondary store that
	// mirrors the primary asynchronously. Upsert must create the
	// document when it does not exist yet.
	EntryMirror interface {
		Upsert(ctx context.Context, e core.Entry) error
		Delete(ctx context.Context, id string) error
	}
)
